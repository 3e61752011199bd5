package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/chaz8081/voicetyper/internal/app"
	"github.com/chaz8081/voicetyper/internal/audio"
	"github.com/chaz8081/voicetyper/internal/config"
	"github.com/chaz8081/voicetyper/internal/history"
	"github.com/chaz8081/voicetyper/internal/hotkey"
	"github.com/chaz8081/voicetyper/internal/inject"
	"github.com/chaz8081/voicetyper/internal/status"
	"github.com/chaz8081/voicetyper/internal/transcribe"
)

// shutdownTimeout bounds how long an in-flight transcription may delay exit.
const shutdownTimeout = 10 * time.Second

func runDictation(args []string, stderr io.Writer) error {
	flags := flag.NewFlagSet("run", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to config file (default: ~/.voice-typer.toml)")
	var o config.Overrides
	flags.StringVar(&o.Engine, "engine", "", "transcription engine: whisper, assemblyai, google or gemini")
	flags.StringVar(&o.Hotkey, "hotkey", "", "toggle hotkey, e.g. ctrl+alt+d")
	flags.StringVar(&o.Language, "language", "", "spoken language, e.g. nl or en-US")
	flags.BoolVar(&o.NoSpace, "no-space", false, "do not append a space after typed text")
	flags.StringVar(&o.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	if err := flags.Parse(args); err != nil {
		return err
	}

	bootLog := newLogger(stderr, zerolog.InfoLevel)
	loadEnv(bootLog)

	cfg, err := loadConfig(*configPath, bootLog)
	if err != nil {
		return err
	}
	o.Apply(cfg)
	if o.Hotkey != "" {
		norm, err := config.NormalizeHotkey(cfg.Hotkey)
		if err != nil {
			return fmt.Errorf("--hotkey: %w", err)
		}
		cfg.Hotkey = norm
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log := newLogger(stderr, config.ParseLogLevel(cfg.LogLevel))
	printBanner(stderr, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize transcriber
	log.Info().Str("engine", string(cfg.Engine)).Msg("Loading transcriber...")
	loadStart := time.Now()
	transcriber, err := transcribe.New(ctx, cfg, log.With().Str("component", "transcribe").Logger())
	if err != nil {
		return fmt.Errorf("failed to initialize %s engine: %w", cfg.Engine, err)
	}
	defer transcriber.Close()
	log.Info().Dur("took", time.Since(loadStart).Round(time.Millisecond)).Msg("Transcriber ready")

	// Initialize audio recorder
	recorder, err := audio.NewRecorder(uint32(cfg.SampleRate))
	if err != nil {
		return fmt.Errorf("failed to initialize audio recorder: %w\n\nEnsure microphone access is granted to this terminal", err)
	}
	defer recorder.Close()
	log.Info().Int("sample_rate", cfg.SampleRate).Msg("Audio recorder ready")

	typer := inject.NewTyper(cfg.TypeMethod)
	log.Info().Str("method", cfg.TypeMethod).Msg("Text typer ready")

	opts := []app.Option{app.WithLogger(log.With().Str("component", "app").Logger())}
	if cfg.HistoryPath != "" {
		store, err := history.Open(config.ExpandTilde(cfg.HistoryPath))
		if err != nil {
			log.Warn().Err(err).Msg("History disabled")
		} else {
			defer store.Close()
			opts = append(opts, app.WithHistory(store))
		}
	}

	a := app.New(cfg, recorder, transcriber, typer, opts...)
	go status.New(a, log, cfg.Notify).Run(ctx)

	listener := hotkey.NewListener(cfg.Hotkey)
	go listener.Start()
	log.Info().Str("hotkey", cfg.Hotkey).Msgf("Ready! Press %s to start and stop dictation. Ctrl+C to quit.", cfg.Hotkey)

	a.Run(ctx, listener.Events())

	log.Info().Msg("Shutting down...")
	listener.Stop()
	waitWithTimeout(a, shutdownTimeout, log)
	log.Info().Msg("Goodbye!")
	return nil
}

// waitWithTimeout waits for in-flight transcriptions, giving up after d.
func waitWithTimeout(a *app.App, d time.Duration, log zerolog.Logger) {
	done := make(chan struct{})
	go func() {
		a.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		log.Warn().Dur("timeout", d).Msg("Transcription still running, exiting anyway")
	}
}

// loadEnv loads API keys from .env files without overriding the environment.
func loadEnv(log zerolog.Logger) {
	loaded, err := config.LoadEnvFiles(config.DefaultEnvFiles()...)
	if err != nil {
		log.Warn().Err(err).Msg("Reading env file")
	}
	for _, p := range loaded {
		log.Debug().Str("path", p).Msg("Env file loaded")
	}
}

// loadConfig loads the config from the specified path, or falls back to the
// default config path. A broken explicit file is an error; a broken default
// file is reported and replaced by the defaults.
func loadConfig(path string, log zerolog.Logger) (*config.Config, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", config.ErrConfig, path)
		}
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err != nil {
		log.Info().Msg("No config file found, using defaults")
		return config.Default(), nil
	}
	cfg, err := config.Load(defaultPath)
	if err != nil {
		log.Warn().Err(err).Msg("Ignoring unreadable config file, using defaults")
		return config.Default(), nil
	}
	log.Info().Str("path", defaultPath).Msg("Config loaded")
	return cfg, nil
}

// printBanner displays the startup configuration summary.
func printBanner(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "=== voicetyper ===")
	fmt.Fprintf(w, "  Engine:   %s\n", cfg.Engine)
	if cfg.Engine == config.EngineWhisper {
		fmt.Fprintf(w, "  Model:    %s (%s, %s)\n", cfg.WhisperModel, cfg.WhisperDevice, cfg.WhisperComputeType)
	}
	fmt.Fprintf(w, "  Hotkey:   %s (toggle)\n", cfg.Hotkey)
	fmt.Fprintf(w, "  Language: %s\n", orDash(cfg.Language))
	fmt.Fprintf(w, "  Audio:    %dHz, mono\n", cfg.SampleRate)
	fmt.Fprintf(w, "  Typing:   %s (space: %t)\n", cfg.TypeMethod, cfg.AppendSpace)
	fmt.Fprintf(w, "  History:  %s\n", orDash(cfg.HistoryPath))
	fmt.Fprintf(w, "  Log:      %s\n", cfg.LogLevel)
	fmt.Fprintln(w, "==================")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
