// Package transcribe provides speech-to-text backends.
//
// Supported engines:
//   - whisper: whisper.cpp via Go bindings (default, local)
//   - assemblyai: upload the recording and poll the transcription job
//   - google: Cloud Speech-to-Text synchronous recognition
//   - gemini: generative model prompted with the recording
package transcribe

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chaz8081/voicetyper/internal/config"
)

var (
	// ErrInvalidEngine is returned by New for an unrecognized engine name.
	ErrInvalidEngine = errors.New("invalid engine")
	// ErrBackendUnavailable marks missing credentials, models or dependencies.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrBackend marks a remote or service failure.
	ErrBackend = errors.New("backend error")
	// ErrBackendTimeout marks an exceeded bound.
	ErrBackendTimeout = errors.New("backend timeout")
)

// Transcriber converts a recorded audio file to text.
type Transcriber interface {
	// Transcribe returns the text spoken in the WAV file at audioPath.
	Transcribe(ctx context.Context, audioPath string) (string, error)
	// Close releases backend resources.
	Close() error
}

// New creates the Transcriber for cfg.Engine. The engine is checked before
// any model is loaded or client is created.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Transcriber, error) {
	switch cfg.Engine {
	case config.EngineWhisper:
		return NewWhisperTranscriber(WhisperOptions{
			Model:       cfg.WhisperModel,
			Device:      cfg.WhisperDevice,
			ComputeType: cfg.WhisperComputeType,
			Language:    cfg.Language,
			ModelsDir:   config.DefaultModelsDir(),
			Logger:      log,
		})
	case config.EngineAssemblyAI:
		return NewAssemblyAITranscriber(config.Secret(cfg.AssemblyAIAPIKey, AssemblyAIKeyEnv), cfg.Language)
	case config.EngineGoogle:
		return NewGoogleTranscriber(ctx, cfg.GoogleCredentialsPath, cfg.Language, cfg.SampleRate)
	case config.EngineGemini:
		return NewGeminiTranscriber(ctx, config.Secret(cfg.GeminiAPIKey, GeminiKeyEnv), cfg.Language)
	default:
		return nil, fmt.Errorf("transcribe: %w %q (supported: whisper, assemblyai, google, gemini)", ErrInvalidEngine, cfg.Engine)
	}
}
