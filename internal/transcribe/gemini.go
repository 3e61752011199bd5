package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

const (
	// GeminiKeyEnv is consulted when gemini_api_key is empty.
	GeminiKeyEnv = "GEMINI_API_KEY"

	geminiModel = "gemini-2.0-flash"
)

// contentGenerator matches genai.Models.GenerateContent.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiTranscriber asks a generative model for a verbatim transcript.
type GeminiTranscriber struct {
	models contentGenerator
	prompt string
}

// NewGeminiTranscriber creates a Gemini API client for apiKey.
func NewGeminiTranscriber(ctx context.Context, apiKey, language string) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("transcribe: %w: Gemini key missing (set gemini_api_key or %s)",
			ErrBackendUnavailable, GeminiKeyEnv)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w: creating gemini client: %w", ErrBackendUnavailable, err)
	}
	return newGeminiTranscriber(client.Models, language), nil
}

func newGeminiTranscriber(models contentGenerator, language string) *GeminiTranscriber {
	return &GeminiTranscriber{
		models: models,
		prompt: geminiPrompt(language),
	}
}

func geminiPrompt(language string) string {
	return fmt.Sprintf("Transcribe the following audio accurately in %s. "+
		"Return only the literal transcript, no explanation.", languageName(language))
}

// Close is a no-op; the genai client has nothing to release.
func (t *GeminiTranscriber) Close() error { return nil }

// Transcribe sends the instruction and the WAV bytes in one request.
func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("transcribe: reading audio file: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(t.prompt),
			genai.NewPartFromBytes(data, "audio/wav"),
		}, genai.RoleUser),
	}
	resp, err := t.models.GenerateContent(ctx, geminiModel, contents, nil)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("transcribe: %w: gemini: %w", ErrBackendTimeout, err)
		}
		return "", fmt.Errorf("transcribe: %w: gemini: %w", ErrBackend, err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
