package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/chaz8081/voicetyper/internal/config"
)

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"help", []string{"help"}, 0},
		{"unknown command", []string{"dance"}, 1},
		{"run flag help", []string{"-h"}, 0},
		{"setup flag help", []string{"setup", "-h"}, 0},
		{"bad flag", []string{"run", "--bogus"}, 1},
		{"bad history format", []string{"history", "--format", "xml"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if got := run(tt.args, &stderr); got != tt.want {
				t.Errorf("run(%v) = %d, want %d (stderr: %s)", tt.args, got, tt.want, stderr.String())
			}
		})
	}
}

func TestUnknownCommandPrintsUsage(t *testing.T) {
	var stderr bytes.Buffer
	run([]string{"dance"}, &stderr)
	if !strings.Contains(stderr.String(), "Usage: voicetyper") {
		t.Errorf("stderr = %q, want usage", stderr.String())
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"), zerolog.Nop())
	if !errors.Is(err, config.ErrConfig) {
		t.Errorf("error = %v, want ErrConfig", err)
	}
}

func TestLoadConfigExplicitBroken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("engine = [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path, zerolog.Nop()); !errors.Is(err, config.ErrConfig) {
		t.Errorf("error = %v, want ErrConfig", err)
	}
}

func TestLoadConfigDefaultBrokenFallsBack(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.WriteFile(filepath.Join(home, ".voice-typer.toml"), []byte("engine = [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig("", zerolog.Nop())
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Engine != config.EngineWhisper {
		t.Errorf("engine = %q, want default whisper", cfg.Engine)
	}
}

func TestLoadConfigDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.WriteFile(filepath.Join(home, ".voice-typer.toml"), []byte(`engine = "gemini"`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig("", zerolog.Nop())
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Engine != config.EngineGemini {
		t.Errorf("engine = %q, want gemini", cfg.Engine)
	}
}

func TestHistoryDisabled(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	var stderr bytes.Buffer
	if got := run([]string{"history"}, &stderr); got != 1 {
		t.Fatalf("exit = %d, want 1", got)
	}
	if !strings.Contains(stderr.String(), "history_path") {
		t.Errorf("stderr = %q, want a history_path hint", stderr.String())
	}
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	printBanner(&buf, config.Default())
	out := buf.String()
	for _, want := range []string{"whisper", "small", "<ctrl>+<alt>+d", "16000Hz"} {
		if !strings.Contains(out, want) {
			t.Errorf("banner missing %q:\n%s", want, out)
		}
	}
}
