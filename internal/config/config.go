// Package config loads, validates and saves the voicetyper settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// ErrConfig marks a malformed or unreadable configuration.
var ErrConfig = errors.New("config error")

// Engine names a transcription backend.
type Engine string

const (
	EngineWhisper    Engine = "whisper"
	EngineAssemblyAI Engine = "assemblyai"
	EngineGoogle     Engine = "google"
	EngineGemini     Engine = "gemini"
)

// Engines lists every supported engine in display order.
var Engines = []Engine{EngineWhisper, EngineAssemblyAI, EngineGoogle, EngineGemini}

// Config holds all application configuration. Field order is the order
// keys are written by Save.
type Config struct {
	Engine                Engine `toml:"engine" validate:"oneof=whisper assemblyai google gemini"`
	Hotkey                string `toml:"hotkey" validate:"required"`
	Language              string `toml:"language"`
	SampleRate            int    `toml:"sample_rate" validate:"gt=0"`
	AppendSpace           bool   `toml:"append_space"`
	WhisperModel          string `toml:"whisper_model" validate:"required"`
	WhisperDevice         string `toml:"whisper_device" validate:"oneof=auto cpu gpu cuda metal"`
	WhisperComputeType    string `toml:"whisper_compute_type" validate:"oneof=int8 float16 float32"`
	AssemblyAIAPIKey      string `toml:"assemblyai_api_key"`
	GoogleCredentialsPath string `toml:"google_credentials_path"`
	GeminiAPIKey          string `toml:"gemini_api_key"`
	TypeMethod            string `toml:"type_method" validate:"oneof=type paste"`
	LogLevel              string `toml:"log_level" validate:"oneof=debug info warn error"`
	HistoryPath           string `toml:"history_path"`
	Notify                bool   `toml:"notify"`
}

// DefaultConfigPath returns the per-user config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".voice-typer.toml"
	}
	return filepath.Join(home, ".voice-typer.toml")
}

// DefaultModelsDir returns the directory whisper models are stored in.
func DefaultModelsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("models")
	}
	return filepath.Join(home, ".local", "share", "voicetyper", "models")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Engine:             EngineWhisper,
		Hotkey:             "<ctrl>+<alt>+d",
		Language:           "nl",
		SampleRate:         16000,
		AppendSpace:        true,
		WhisperModel:       "small",
		WhisperDevice:      "auto",
		WhisperComputeType: "int8",
		TypeMethod:         "type",
		LogLevel:           "info",
	}
}

// Load reads a TOML config file. A missing file yields the defaults. Keys
// whose values cannot be interpreted fall back to their default instead of
// failing the whole load; only a syntactically broken file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("%w: reading %s: %w", ErrConfig, path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML config data on top of the defaults. Unknown choices
// fall back to their default; only an unknown engine is kept so Validate
// can reject it.
func Parse(data []byte) (*Config, error) {
	raw := map[string]any{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing toml: %w", ErrConfig, err)
	}

	d := Default()
	cfg := &Config{
		Engine:                Engine(strings.ToLower(asString(raw["engine"], string(d.Engine)))),
		Hotkey:                asString(raw["hotkey"], d.Hotkey),
		Language:              asString(raw["language"], d.Language),
		SampleRate:            asPositiveInt(raw["sample_rate"], d.SampleRate),
		AppendSpace:           asBool(raw["append_space"], d.AppendSpace),
		WhisperModel:          asString(raw["whisper_model"], d.WhisperModel),
		WhisperDevice:         asChoice(raw["whisper_device"], d.WhisperDevice, "auto", "cpu", "gpu", "cuda", "metal"),
		WhisperComputeType:    asChoice(raw["whisper_compute_type"], d.WhisperComputeType, "int8", "float16", "float32"),
		AssemblyAIAPIKey:      asString(raw["assemblyai_api_key"], ""),
		GoogleCredentialsPath: asString(raw["google_credentials_path"], ""),
		GeminiAPIKey:          asString(raw["gemini_api_key"], ""),
		TypeMethod:            asChoice(raw["type_method"], d.TypeMethod, "type", "paste"),
		LogLevel:              asChoice(raw["log_level"], d.LogLevel, "debug", "info", "warn", "error"),
		HistoryPath:           asString(raw["history_path"], ""),
		Notify:                asBool(raw["notify"], d.Notify),
	}
	return cfg, nil
}

// Save writes cfg to path with owner-only permissions, creating parent
// directories as needed. The file holds API keys.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}

	body, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	var b strings.Builder
	b.WriteString("# voicetyper configuration\n")
	b.WriteString("# Edit with 'voicetyper settings' or 'voicetyper setup'.\n\n")
	b.Write(body)

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
			return name
		})
	})
	return validate
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", ErrConfig, describe(verrs[0]))
		}
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if _, err := NormalizeHotkey(c.Hotkey); err != nil {
		return fmt.Errorf("%w: hotkey: %w", ErrConfig, err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of %s, got %q", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "), fmt.Sprint(fe.Value()))
	case "required":
		return fmt.Sprintf("%s must not be empty", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be > %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}

// Overrides are command-line values applied on top of a loaded config.
type Overrides struct {
	Engine   string
	Hotkey   string
	Language string
	NoSpace  bool
	LogLevel string
}

// Apply copies every non-empty override into c.
func (o Overrides) Apply(c *Config) {
	if o.Engine != "" {
		c.Engine = Engine(strings.ToLower(o.Engine))
	}
	if o.Hotkey != "" {
		c.Hotkey = o.Hotkey
	}
	if o.Language != "" {
		c.Language = o.Language
	}
	if o.NoSpace {
		c.AppendSpace = false
	}
	if o.LogLevel != "" {
		c.LogLevel = strings.ToLower(o.LogLevel)
	}
}

// ParseLogLevel maps a config log level to a zerolog level, defaulting to info.
func ParseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ExpandTilde replaces a leading ~ with the user's home directory.
func ExpandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
