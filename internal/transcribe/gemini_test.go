package transcribe

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"google.golang.org/genai"
)

type fakeGenerator struct {
	text  string
	err   error
	model string
	got   []*genai.Content
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.got = contents
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(f.text, genai.RoleModel),
		}},
	}, nil
}

func TestGeminiTranscribe(t *testing.T) {
	gen := &fakeGenerator{text: "  goedemorgen \n"}
	tr := newGeminiTranscriber(gen, "nl")
	clip := writeClip(t, tone(800, 0.5))

	text, err := tr.Transcribe(context.Background(), clip)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "goedemorgen" {
		t.Errorf("Transcribe() = %q, want %q", text, "goedemorgen")
	}
	if gen.model != "gemini-2.0-flash" {
		t.Errorf("model = %q", gen.model)
	}

	if len(gen.got) != 1 || len(gen.got[0].Parts) != 2 {
		t.Fatalf("expected one content with two parts, got %+v", gen.got)
	}
	prompt := gen.got[0].Parts[0].Text
	if !strings.Contains(prompt, "Dutch") {
		t.Errorf("prompt %q should name the language", prompt)
	}
	blob := gen.got[0].Parts[1].InlineData
	if blob == nil || blob.MIMEType != "audio/wav" {
		t.Fatalf("audio part = %+v, want audio/wav inline data", blob)
	}
	want, _ := os.ReadFile(clip)
	if len(blob.Data) != len(want) {
		t.Errorf("audio part has %d bytes, want whole file of %d", len(blob.Data), len(want))
	}
}

func TestGeminiTranscribeError(t *testing.T) {
	tr := newGeminiTranscriber(&fakeGenerator{err: errors.New("quota exceeded")}, "en")

	_, err := tr.Transcribe(context.Background(), writeClip(t, tone(160, 0.5)))
	if !errors.Is(err, ErrBackend) {
		t.Errorf("Transcribe() error = %v, want ErrBackend", err)
	}
}

func TestGeminiMissingKey(t *testing.T) {
	_, err := NewGeminiTranscriber(context.Background(), "", "nl")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("NewGeminiTranscriber() error = %v, want ErrBackendUnavailable", err)
	}
}
