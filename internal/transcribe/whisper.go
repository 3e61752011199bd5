package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/rs/zerolog"

	"github.com/chaz8081/voicetyper/internal/audio"
	"github.com/chaz8081/voicetyper/internal/models"
)

const (
	whisperBeamSize   = 5
	whisperSampleRate = 16000
)

// WhisperOptions configures the local whisper.cpp engine.
type WhisperOptions struct {
	// Model is a model name such as "small" or a path to a ggml .bin file.
	Model       string
	Device      string
	ComputeType string
	// Language is a language code; empty lets whisper detect it.
	Language  string
	ModelsDir string
	Logger    zerolog.Logger
}

// WhisperTranscriber wraps a whisper.cpp model for speech-to-text.
type WhisperTranscriber struct {
	model    whisper.Model
	language string
	threads  uint
	log      zerolog.Logger
}

// NewWhisperTranscriber loads the model selected by opts.
// The caller must call Close() when done.
func NewWhisperTranscriber(opts WhisperOptions) (*WhisperTranscriber, error) {
	modelPath, err := models.WhisperModelPath(opts.ModelsDir, opts.Model, opts.ComputeType)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w: %w", ErrBackendUnavailable, err)
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("transcribe: %w: whisper model %s not found (run 'voicetyper download')",
			ErrBackendUnavailable, modelPath)
	}

	log := opts.Logger.With().Str("component", "whisper").Logger()
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w: load whisper model %q: %w", ErrBackendUnavailable, modelPath, err)
	}

	t := &WhisperTranscriber{
		model:    model,
		language: whisperLanguage(opts.Language),
		log:      log,
	}
	switch opts.Device {
	case "cpu":
		t.threads = uint(runtime.NumCPU())
	case "", "auto":
	default:
		log.Info().Str("device", opts.Device).Msg("using the compiled whisper.cpp backend for this device")
	}
	if !model.IsMultilingual() && t.language != "en" {
		log.Warn().Str("language", opts.Language).Msg("model is English-only, language setting ignored")
	}

	log.Debug().Str("path", modelPath).Str("language", t.language).Msg("whisper model loaded")
	return t, nil
}

// whisperLanguage reduces a locale to the base code whisper expects.
func whisperLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "auto"
	}
	return strings.ToLower(AssemblyAILanguage(lang))
}

// Close releases the whisper model resources.
func (t *WhisperTranscriber) Close() error {
	if t.model != nil {
		return t.model.Close()
	}
	return nil
}

// Transcribe decodes the WAV file, resamples it to 16 kHz, drops silence
// and runs inference.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	samples, rate, err := audio.ReadWAV(audioPath)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	if rate != whisperSampleRate {
		t.log.Debug().Int("from", rate).Int("to", whisperSampleRate).Msg("resampling recording")
		samples = resample(samples, rate, whisperSampleRate)
	}

	voiced := gateSilence(samples, whisperSampleRate)
	if len(voiced) == 0 {
		t.log.Debug().Int("samples", len(samples)).Msg("no voice activity, skipping inference")
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return t.Process(voiced)
}

// Process transcribes mono 16kHz float32 audio samples to text.
func (t *WhisperTranscriber) Process(samples []float32) (string, error) {
	wctx, err := t.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("transcribe: create context: %w", err)
	}

	if t.model.IsMultilingual() {
		if err := wctx.SetLanguage(t.language); err != nil {
			return "", fmt.Errorf("transcribe: set language %q: %w", t.language, err)
		}
	}
	if t.threads > 0 {
		wctx.SetThreads(t.threads)
	}
	wctx.SetBeamSize(whisperBeamSize)

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("transcribe: %w: process: %w", ErrBackend, err)
	}

	var segments []string
	for {
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("transcribe: next segment: %w", err)
		}
		segments = append(segments, seg.Text)
	}

	return joinSegments(segments), nil
}

// joinSegments trims each segment, drops empty ones and joins the rest
// with single spaces.
func joinSegments(segments []string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
