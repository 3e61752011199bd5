package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/chaz8081/voicetyper/internal/config"
	"github.com/chaz8081/voicetyper/internal/history"
	"github.com/chaz8081/voicetyper/internal/models"
	"github.com/chaz8081/voicetyper/internal/settings"
	"github.com/chaz8081/voicetyper/internal/setup"
)

// configPathOrDefault returns path, or the default config path when empty.
func configPathOrDefault(path string) string {
	if path == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandTilde(path)
}

// loadExisting loads the config at path for editing. A missing file yields
// the defaults so the first setup starts from a clean slate.
func loadExisting(path string, log zerolog.Logger) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Warn().Err(err).Msg("Starting from defaults")
		return config.Default()
	}
	return cfg
}

func runSetup(args []string, stderr io.Writer) error {
	flags := flag.NewFlagSet("setup", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to config file (default: ~/.voice-typer.toml)")
	download := flags.Bool("download", false, "download the whisper model after saving")
	if err := flags.Parse(args); err != nil {
		return err
	}

	log := newLogger(stderr, zerolog.InfoLevel)
	path := configPathOrDefault(*configPath)

	cfg, err := setup.Run(os.Stdin, os.Stdout, loadExisting(path, log))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	fmt.Printf("\nConfig saved to %s\n", path)

	if *download && cfg.Engine == config.EngineWhisper {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		dest, err := models.DownloadWhisper(ctx, config.DefaultModelsDir(), cfg.WhisperModel, cfg.WhisperComputeType, os.Stdout)
		if err != nil {
			return err
		}
		fmt.Printf("Model ready at %s\n", dest)
	}
	fmt.Println("Run 'voicetyper' to start dictating.")
	return nil
}

func runSettings(args []string, stderr io.Writer) error {
	flags := flag.NewFlagSet("settings", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to config file (default: ~/.voice-typer.toml)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	log := newLogger(stderr, zerolog.InfoLevel)
	path := configPathOrDefault(*configPath)

	saved, err := settings.Run(loadExisting(path, log), path)
	if err != nil {
		return err
	}
	if saved {
		fmt.Printf("Settings saved to %s\n", path)
	} else {
		fmt.Println("No changes saved.")
	}
	return nil
}

func runDownload(args []string, stderr io.Writer) error {
	log := newLogger(stderr, zerolog.InfoLevel)
	cfg, err := loadConfig("", log)
	if err != nil {
		return err
	}

	flags := flag.NewFlagSet("download", flag.ContinueOnError)
	flags.SetOutput(stderr)
	model := flags.String("model", cfg.WhisperModel, "whisper model: "+strings.Join(models.KnownModels, ", "))
	computeType := flags.String("compute-type", cfg.WhisperComputeType, "quantization: int8, float16 or float32")
	if err := flags.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dest, err := models.DownloadWhisper(ctx, config.DefaultModelsDir(), *model, *computeType, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("Model ready at %s\n", dest)
	return nil
}

func runHistory(args []string, stderr io.Writer) error {
	flags := flag.NewFlagSet("history", flag.ContinueOnError)
	flags.SetOutput(stderr)
	limit := flags.Int("limit", 20, "number of entries to show")
	format := flags.String("format", "text", "output format: text or yaml")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *format != "text" && *format != "yaml" {
		return fmt.Errorf("--format must be text or yaml, got %q", *format)
	}

	log := newLogger(stderr, zerolog.WarnLevel)
	cfg, err := loadConfig("", log)
	if err != nil {
		return err
	}
	if cfg.HistoryPath == "" {
		return fmt.Errorf("history is disabled; set history_path in %s, e.g. history_path = %q",
			config.DefaultConfigPath(), history.DefaultPath())
	}

	store, err := history.Open(config.ExpandTilde(cfg.HistoryPath))
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(context.Background(), *limit)
	if err != nil {
		return err
	}
	if *format == "yaml" {
		return history.WriteYAML(os.Stdout, entries)
	}
	return history.WriteTable(os.Stdout, entries)
}
