package transcribe

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeRecognizer struct {
	resp   *speechpb.RecognizeResponse
	err    error
	got    *speechpb.RecognizeRequest
	closed bool
}

func (f *fakeRecognizer) Recognize(_ context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
	f.got = req
	return f.resp, f.err
}

func (f *fakeRecognizer) Close() error {
	f.closed = true
	return nil
}

func alt(text string) *speechpb.SpeechRecognitionResult {
	return &speechpb.SpeechRecognitionResult{
		Alternatives: []*speechpb.SpeechRecognitionAlternative{
			{Transcript: text},
			{Transcript: "ignored alternative"},
		},
	}
}

func TestGoogleTranscribe(t *testing.T) {
	rec := &fakeRecognizer{resp: &speechpb.RecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{
			alt(" hallo "),
			{},
			alt("wereld"),
		},
	}}
	tr := newGoogleTranscriber(rec, "nl", 16000)
	samples := tone(1600, 0.5)

	text, err := tr.Transcribe(context.Background(), writeClip(t, samples))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "hallo wereld" {
		t.Errorf("Transcribe() = %q, want %q", text, "hallo wereld")
	}

	cfg := rec.got.GetConfig()
	if cfg.GetLanguageCode() != "nl-NL" {
		t.Errorf("LanguageCode = %q, want nl-NL", cfg.GetLanguageCode())
	}
	if cfg.GetSampleRateHertz() != 16000 {
		t.Errorf("SampleRateHertz = %d, want 16000", cfg.GetSampleRateHertz())
	}
	if cfg.GetEncoding() != speechpb.RecognitionConfig_LINEAR16 {
		t.Errorf("Encoding = %v, want LINEAR16", cfg.GetEncoding())
	}
	if !cfg.GetEnableAutomaticPunctuation() || cfg.GetModel() != "latest_long" {
		t.Errorf("punctuation/model = %v/%q", cfg.GetEnableAutomaticPunctuation(), cfg.GetModel())
	}
	if got := len(rec.got.GetAudio().GetContent()); got != len(samples)*2 {
		t.Errorf("audio content = %d bytes, want raw PCM of %d bytes", got, len(samples)*2)
	}
}

func TestGoogleTranscribeErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", status.Error(codes.DeadlineExceeded, "too slow"), ErrBackendTimeout},
		{"permission", status.Error(codes.PermissionDenied, "no access"), ErrBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newGoogleTranscriber(&fakeRecognizer{err: tt.err}, "en-GB", 16000)
			_, err := tr.Transcribe(context.Background(), writeClip(t, tone(160, 0.5)))
			if !errors.Is(err, tt.want) {
				t.Errorf("Transcribe() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGoogleClose(t *testing.T) {
	rec := &fakeRecognizer{}
	tr := newGoogleTranscriber(rec, "nl", 16000)
	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !rec.closed {
		t.Error("Close() should close the client")
	}
}
