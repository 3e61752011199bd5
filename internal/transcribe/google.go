package transcribe

import (
	"context"
	"fmt"
	"os"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/chaz8081/voicetyper/internal/audio"
	"github.com/chaz8081/voicetyper/internal/config"
)

const googleModel = "latest_long"

// recognizer is the part of the Speech-to-Text client the engine uses.
type recognizer interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)
	Close() error
}

type speechClient struct {
	client *speech.Client
}

func (c speechClient) Recognize(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
	return c.client.Recognize(ctx, req)
}

func (c speechClient) Close() error { return c.client.Close() }

// GoogleTranscriber sends recordings to Cloud Speech-to-Text in one request.
type GoogleTranscriber struct {
	rec        recognizer
	locale     string
	sampleRate int
}

// NewGoogleTranscriber creates a Speech-to-Text client. With an empty
// credentialsPath the application default credentials are used.
func NewGoogleTranscriber(ctx context.Context, credentialsPath, language string, sampleRate int) (*GoogleTranscriber, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		path := config.ExpandTilde(credentialsPath)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("transcribe: %w: google credentials: %w", ErrBackendUnavailable, err)
		}
		opts = append(opts, option.WithCredentialsFile(path))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w: creating speech client (set google_credentials_path or GOOGLE_APPLICATION_CREDENTIALS): %w",
			ErrBackendUnavailable, err)
	}
	return newGoogleTranscriber(speechClient{client: client}, language, sampleRate), nil
}

func newGoogleTranscriber(rec recognizer, language string, sampleRate int) *GoogleTranscriber {
	return &GoogleTranscriber{
		rec:        rec,
		locale:     GoogleLocale(language),
		sampleRate: sampleRate,
	}
}

// Close releases the gRPC connection.
func (t *GoogleTranscriber) Close() error {
	return t.rec.Close()
}

// Transcribe recognizes the PCM payload of the WAV file.
func (t *GoogleTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	pcm, rate, err := audio.ReadPCM16(audioPath)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	if rate <= 0 {
		rate = t.sampleRate
	}

	resp, err := t.rec.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            int32(rate),
			AudioChannelCount:          1,
			LanguageCode:               t.locale,
			EnableAutomaticPunctuation: true,
			Model:                      googleModel,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: pcm},
		},
	})
	if err != nil {
		if status.Code(err) == codes.DeadlineExceeded {
			return "", fmt.Errorf("transcribe: %w: google recognize: %w", ErrBackendTimeout, err)
		}
		return "", fmt.Errorf("transcribe: %w: google recognize: %w", ErrBackend, err)
	}

	var parts []string
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		parts = append(parts, alts[0].GetTranscript())
	}
	return joinSegments(parts), nil
}

