package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Engine != EngineWhisper {
		t.Errorf("Engine = %q, want %q", cfg.Engine, EngineWhisper)
	}
	if cfg.Hotkey != "<ctrl>+<alt>+d" {
		t.Errorf("Hotkey = %q, want %q", cfg.Hotkey, "<ctrl>+<alt>+d")
	}
	if cfg.Language != "nl" {
		t.Errorf("Language = %q, want %q", cfg.Language, "nl")
	}
	if cfg.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", cfg.SampleRate)
	}
	if !cfg.AppendSpace {
		t.Error("AppendSpace should default to true")
	}
	if cfg.WhisperModel != "small" || cfg.WhisperDevice != "auto" || cfg.WhisperComputeType != "int8" {
		t.Errorf("whisper defaults = %q/%q/%q, want small/auto/int8",
			cfg.WhisperModel, cfg.WhisperDevice, cfg.WhisperComputeType)
	}
	if cfg.TypeMethod != "type" {
		t.Errorf("TypeMethod = %q, want %q", cfg.TypeMethod, "type")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
engine = "AssemblyAI"
hotkey = "ctrl+shift+space"
language = "en-GB"
sample_rate = 44100
append_space = false
whisper_model = "base"
whisper_device = "cpu"
whisper_compute_type = "float32"
assemblyai_api_key = "aai-key"
google_credentials_path = "/tmp/creds.json"
gemini_api_key = "gem-key"
type_method = "paste"
log_level = "debug"
history_path = "/tmp/history.sqlite"
notify = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := &Config{
		Engine:                EngineAssemblyAI,
		Hotkey:                "ctrl+shift+space",
		Language:              "en-GB",
		SampleRate:            44100,
		AppendSpace:           false,
		WhisperModel:          "base",
		WhisperDevice:         "cpu",
		WhisperComputeType:    "float32",
		AssemblyAIAPIKey:      "aai-key",
		GoogleCredentialsPath: "/tmp/creds.json",
		GeminiAPIKey:          "gem-key",
		TypeMethod:            "paste",
		LogLevel:              "debug",
		HistoryPath:           "/tmp/history.sqlite",
		Notify:                true,
	}
	if *cfg != *want {
		t.Errorf("Load() = %+v\nwant %+v", *cfg, *want)
	}
}

func TestLoadFileNotFoundUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() of missing file = %+v, want defaults", *cfg)
	}
}

func TestLoadSyntaxError(t *testing.T) {
	path := writeConfig(t, "engine = \"whisper\"\nthis is not toml\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should fail on malformed toml")
	}
	if !errors.Is(err, ErrConfig) {
		t.Errorf("Load() error = %v, want ErrConfig", err)
	}
}

func TestLoadMalformedFieldsFallBack(t *testing.T) {
	path := writeConfig(t, `
sample_rate = "fast"
append_space = [1, 2]
hotkey = { key = "d" }
language = 7
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want default 16000", cfg.SampleRate)
	}
	if !cfg.AppendSpace {
		t.Error("AppendSpace should fall back to default true")
	}
	if cfg.Hotkey != Default().Hotkey {
		t.Errorf("Hotkey = %q, want default", cfg.Hotkey)
	}
	if cfg.Language != "7" {
		t.Errorf("Language = %q, want %q", cfg.Language, "7")
	}
}

func TestLoadScalarCoercion(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantRate    int
		wantSpace   bool
		wantEngine  Engine
		wantLogLvl  string
		wantCompute string
	}{
		{"string rate", `sample_rate = "22050"`, 22050, true, EngineWhisper, "info", "int8"},
		{"negative rate", `sample_rate = -5`, 16000, true, EngineWhisper, "info", "int8"},
		{"float rate", `sample_rate = 8000.0`, 8000, true, EngineWhisper, "info", "int8"},
		{"yes string", `append_space = "yes"`, 16000, true, EngineWhisper, "info", "int8"},
		{"no string", `append_space = "nope"`, 16000, false, EngineWhisper, "info", "int8"},
		{"zero int", `append_space = 0`, 16000, false, EngineWhisper, "info", "int8"},
		{"upper engine", `engine = "GEMINI"`, 16000, true, EngineGemini, "info", "int8"},
		{"upper log level", `log_level = "WARN"`, 16000, true, EngineWhisper, "warn", "int8"},
		{"compute", `whisper_compute_type = "float16"`, 16000, true, EngineWhisper, "info", "float16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.content))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if cfg.SampleRate != tt.wantRate {
				t.Errorf("SampleRate = %d, want %d", cfg.SampleRate, tt.wantRate)
			}
			if cfg.AppendSpace != tt.wantSpace {
				t.Errorf("AppendSpace = %v, want %v", cfg.AppendSpace, tt.wantSpace)
			}
			if cfg.Engine != tt.wantEngine {
				t.Errorf("Engine = %q, want %q", cfg.Engine, tt.wantEngine)
			}
			if cfg.LogLevel != tt.wantLogLvl {
				t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, tt.wantLogLvl)
			}
			if cfg.WhisperComputeType != tt.wantCompute {
				t.Errorf("WhisperComputeType = %q, want %q", cfg.WhisperComputeType, tt.wantCompute)
			}
		})
	}
}

func TestLoadUnknownChoicesFallBack(t *testing.T) {
	tests := []struct {
		name    string
		content string
		got     func(*Config) string
		want    string
	}{
		{"log level", `log_level = "verbose"`, func(c *Config) string { return c.LogLevel }, "info"},
		{"type method", `type_method = "typing"`, func(c *Config) string { return c.TypeMethod }, "type"},
		{"whisper device", `whisper_device = "tpu"`, func(c *Config) string { return c.WhisperDevice }, "auto"},
		{"compute type", `whisper_compute_type = "int4"`, func(c *Config) string { return c.WhisperComputeType }, "int8"},
		{"mixed case kept", `type_method = " Paste "`, func(c *Config) string { return c.TypeMethod }, "paste"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got := tt.got(cfg); got != tt.want {
				t.Errorf("value = %q, want %q", got, tt.want)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() error = %v, want nil after fallback", err)
			}
		})
	}
}

func TestLoadUnknownEngineIsKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, `engine = "vosk"`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine != "vosk" {
		t.Errorf("Engine = %q, want vosk", cfg.Engine)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
		t.Errorf("Validate() error = %v, want ErrConfig", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	configs := []*Config{
		Default(),
		{
			Engine:                EngineGoogle,
			Hotkey:                "<cmd>+<shift>+r",
			Language:              "de",
			SampleRate:            48000,
			AppendSpace:           false,
			WhisperModel:          "/opt/models/ggml-large-v3.bin",
			WhisperDevice:         "cuda",
			WhisperComputeType:    "float16",
			AssemblyAIAPIKey:      `with "quotes" and \backslash`,
			GoogleCredentialsPath: `C:\keys\google.json`,
			GeminiAPIKey:          "",
			TypeMethod:            "paste",
			LogLevel:              "error",
			HistoryPath:           "~/history.sqlite",
			Notify:                true,
		},
	}

	for i, cfg := range configs {
		path := filepath.Join(t.TempDir(), "nested", "config.toml")
		if err := Save(cfg, path); err != nil {
			t.Fatalf("[%d] Save() error = %v", i, err)
		}
		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("[%d] Load() error = %v", i, err)
		}
		if err := Save(loaded, path); err != nil {
			t.Fatalf("[%d] second Save() error = %v", i, err)
		}
		again, err := Load(path)
		if err != nil {
			t.Fatalf("[%d] second Load() error = %v", i, err)
		}
		if *again != *cfg {
			t.Errorf("[%d] round trip = %+v\nwant %+v", i, *again, *cfg)
		}
	}
}

func TestSaveWritesPrivateFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(Default(), path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config permissions = %o, want 600", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "# voicetyper") {
		t.Error("written config should start with header comment")
	}
	engineAt := strings.Index(content, "engine =")
	notifyAt := strings.Index(content, "notify =")
	if engineAt < 0 || notifyAt < 0 || engineAt > notifyAt {
		t.Errorf("keys should be written in fixed order, got:\n%s", content)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"unknown engine", func(c *Config) { c.Engine = "vosk" }, true},
		{"empty hotkey", func(c *Config) { c.Hotkey = "" }, true},
		{"blank hotkey", func(c *Config) { c.Hotkey = " + " }, true},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, true},
		{"invalid device", func(c *Config) { c.WhisperDevice = "tpu" }, true},
		{"invalid compute type", func(c *Config) { c.WhisperComputeType = "int4" }, true},
		{"empty whisper model", func(c *Config) { c.WhisperModel = "" }, true},
		{"invalid type method", func(c *Config) { c.TypeMethod = "ble" }, true},
		{"invalid log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"each engine", func(c *Config) { c.Engine = EngineGemini }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrConfig) {
				t.Errorf("Validate() error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestValidateMessageNamesKey(t *testing.T) {
	cfg := Default()
	cfg.Engine = "vosk"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "engine") {
		t.Errorf("Validate() error = %v, want mention of engine", err)
	}
}

func TestOverridesApply(t *testing.T) {
	cfg := Default()
	Overrides{Engine: "Gemini", Hotkey: "alt+x", Language: "en", NoSpace: true, LogLevel: "DEBUG"}.Apply(cfg)

	if cfg.Engine != EngineGemini {
		t.Errorf("Engine = %q, want %q", cfg.Engine, EngineGemini)
	}
	if cfg.Hotkey != "alt+x" {
		t.Errorf("Hotkey = %q, want %q", cfg.Hotkey, "alt+x")
	}
	if cfg.Language != "en" {
		t.Errorf("Language = %q, want %q", cfg.Language, "en")
	}
	if cfg.AppendSpace {
		t.Error("AppendSpace should be false with NoSpace")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}

	untouched := Default()
	Overrides{}.Apply(untouched)
	if *untouched != *Default() {
		t.Error("empty overrides should not change the config")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLogLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}
	if got := ExpandTilde("~/keys/google.json"); got != filepath.Join(home, "keys/google.json") {
		t.Errorf("ExpandTilde() = %q", got)
	}
	if got := ExpandTilde("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandTilde() changed absolute path to %q", got)
	}
}
