package settings

import (
	"strconv"

	"github.com/chaz8081/voicetyper/internal/config"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindSecret
	kindInt
	kindBool
	kindChoice
)

// field binds one config key to the form.
type field struct {
	key     string
	label   string
	kind    fieldKind
	choices []string
	get     func(*config.Config) string
	set     func(*config.Config, string)
}

func engineChoices() []string {
	out := make([]string, len(config.Engines))
	for i, e := range config.Engines {
		out[i] = string(e)
	}
	return out
}

func formatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formFields() []field {
	return []field{
		{
			key: "engine", label: "Engine", kind: kindChoice, choices: engineChoices(),
			get: func(c *config.Config) string { return string(c.Engine) },
			set: func(c *config.Config, v string) { c.Engine = config.Engine(v) },
		},
		{
			key: "hotkey", label: "Hotkey", kind: kindText,
			get: func(c *config.Config) string { return c.Hotkey },
			set: func(c *config.Config, v string) { c.Hotkey = v },
		},
		{
			key: "language", label: "Language", kind: kindText,
			get: func(c *config.Config) string { return c.Language },
			set: func(c *config.Config, v string) { c.Language = v },
		},
		{
			key: "sample_rate", label: "Sample rate", kind: kindInt,
			get: func(c *config.Config) string { return strconv.Itoa(c.SampleRate) },
			set: func(c *config.Config, v string) { c.SampleRate, _ = strconv.Atoi(v) },
		},
		{
			key: "append_space", label: "Append space", kind: kindBool,
			get: func(c *config.Config) string { return formatBool(c.AppendSpace) },
			set: func(c *config.Config, v string) { c.AppendSpace = v == "yes" },
		},
		{
			key: "type_method", label: "Typing method", kind: kindChoice, choices: []string{"type", "paste"},
			get: func(c *config.Config) string { return c.TypeMethod },
			set: func(c *config.Config, v string) { c.TypeMethod = v },
		},
		{
			key: "whisper_model", label: "Whisper model", kind: kindText,
			get: func(c *config.Config) string { return c.WhisperModel },
			set: func(c *config.Config, v string) { c.WhisperModel = v },
		},
		{
			key: "whisper_device", label: "Whisper device", kind: kindChoice,
			choices: []string{"auto", "cpu", "gpu", "cuda", "metal"},
			get:     func(c *config.Config) string { return c.WhisperDevice },
			set:     func(c *config.Config, v string) { c.WhisperDevice = v },
		},
		{
			key: "whisper_compute_type", label: "Whisper compute type", kind: kindChoice,
			choices: []string{"int8", "float16", "float32"},
			get:     func(c *config.Config) string { return c.WhisperComputeType },
			set:     func(c *config.Config, v string) { c.WhisperComputeType = v },
		},
		{
			key: "assemblyai_api_key", label: "AssemblyAI API key", kind: kindSecret,
			get: func(c *config.Config) string { return c.AssemblyAIAPIKey },
			set: func(c *config.Config, v string) { c.AssemblyAIAPIKey = v },
		},
		{
			key: "google_credentials_path", label: "Google credentials", kind: kindText,
			get: func(c *config.Config) string { return c.GoogleCredentialsPath },
			set: func(c *config.Config, v string) { c.GoogleCredentialsPath = v },
		},
		{
			key: "gemini_api_key", label: "Gemini API key", kind: kindSecret,
			get: func(c *config.Config) string { return c.GeminiAPIKey },
			set: func(c *config.Config, v string) { c.GeminiAPIKey = v },
		},
		{
			key: "log_level", label: "Log level", kind: kindChoice,
			choices: []string{"debug", "info", "warn", "error"},
			get:     func(c *config.Config) string { return c.LogLevel },
			set:     func(c *config.Config, v string) { c.LogLevel = v },
		},
		{
			key: "history_path", label: "History database", kind: kindText,
			get: func(c *config.Config) string { return c.HistoryPath },
			set: func(c *config.Config, v string) { c.HistoryPath = v },
		},
		{
			key: "notify", label: "Notifications", kind: kindBool,
			get: func(c *config.Config) string { return formatBool(c.Notify) },
			set: func(c *config.Config, v string) { c.Notify = v == "yes" },
		},
	}
}

// cycle returns the choice after (or before) current, wrapping around.
// Unknown values start from the first choice.
func cycle(choices []string, current string, step int) string {
	idx := -1
	for i, c := range choices {
		if c == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return choices[0]
	}
	n := len(choices)
	return choices[((idx+step)%n+n)%n]
}
