// Package setup implements the interactive terminal configuration flow.
package setup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chaz8081/voicetyper/internal/config"
)

// ErrAborted is returned when input ends before every question is answered.
var ErrAborted = errors.New("setup aborted")

type prompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

// ask prints question with its default and returns the trimmed answer,
// or def for an empty answer.
func (p *prompter) ask(question, def string) (string, error) {
	fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", fmt.Errorf("setup: reading input: %w", err)
		}
		fmt.Fprintln(p.out)
		return "", ErrAborted
	}
	if v := strings.TrimSpace(p.sc.Text()); v != "" {
		return v, nil
	}
	return def, nil
}

func engineNames() string {
	names := make([]string, len(config.Engines))
	for i, e := range config.Engines {
		names[i] = string(e)
	}
	return strings.Join(names, " / ")
}

func validEngine(e config.Engine) bool {
	for _, known := range config.Engines {
		if e == known {
			return true
		}
	}
	return false
}

// Run asks for every setting, starting from existing, and returns the new
// configuration. Engine specific questions are only asked for the chosen
// engine; the other engines keep their existing values.
func Run(in io.Reader, out io.Writer, existing *config.Config) (*config.Config, error) {
	p := &prompter{sc: bufio.NewScanner(in), out: out}
	cfg := *existing

	engineQ := "Engine (" + engineNames() + ")"
	for {
		v, err := p.ask(engineQ, string(existing.Engine))
		if err != nil {
			return nil, err
		}
		cfg.Engine = config.Engine(strings.ToLower(v))
		if validEngine(cfg.Engine) {
			break
		}
		fmt.Fprintf(out, "Choose one of: %s.\n", engineNames())
	}

	for {
		v, err := p.ask("Hotkey (e.g. ctrl+alt+d)", existing.Hotkey)
		if err != nil {
			return nil, err
		}
		normalized, err := config.NormalizeHotkey(v)
		if err == nil {
			cfg.Hotkey = normalized
			break
		}
		fmt.Fprintf(out, "Invalid hotkey: %v.\n", err)
	}

	var err error
	if cfg.Language, err = p.ask("Language code (e.g. nl or nl-NL)", existing.Language); err != nil {
		return nil, err
	}

	rate, err := p.ask("Sample rate", strconv.Itoa(existing.SampleRate))
	if err != nil {
		return nil, err
	}
	cfg.SampleRate = 16000
	if n, convErr := strconv.Atoi(rate); convErr == nil && n > 0 {
		cfg.SampleRate = n
	}

	space, err := p.ask("Add a space after each transcription? (y/n)", yesNo(existing.AppendSpace))
	if err != nil {
		return nil, err
	}
	cfg.AppendSpace = strings.HasPrefix(strings.ToLower(space), "y")

	method, err := p.ask("Typing method (type/paste)", existing.TypeMethod)
	if err != nil {
		return nil, err
	}
	cfg.TypeMethod = strings.ToLower(method)

	switch cfg.Engine {
	case config.EngineWhisper:
		if cfg.WhisperModel, err = p.ask("Whisper model (tiny/base/small/medium/large-v3)", existing.WhisperModel); err != nil {
			return nil, err
		}
		if cfg.WhisperDevice, err = p.ask("Whisper device (auto/cpu/gpu)", existing.WhisperDevice); err != nil {
			return nil, err
		}
		if cfg.WhisperComputeType, err = p.ask("Whisper compute type (int8/float16/float32)", existing.WhisperComputeType); err != nil {
			return nil, err
		}
	case config.EngineAssemblyAI:
		if cfg.AssemblyAIAPIKey, err = p.ask("AssemblyAI API key", orPlaceholder(existing.AssemblyAIAPIKey, "paste-your-key")); err != nil {
			return nil, err
		}
	case config.EngineGoogle:
		if cfg.GoogleCredentialsPath, err = p.ask("Path to Google credentials JSON", orPlaceholder(existing.GoogleCredentialsPath, "~/google-key.json")); err != nil {
			return nil, err
		}
	case config.EngineGemini:
		if cfg.GeminiAPIKey, err = p.ask("Gemini API key", orPlaceholder(existing.GeminiAPIKey, "paste-your-key")); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func orPlaceholder(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
