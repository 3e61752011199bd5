package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// AssemblyAIKeyEnv is consulted when assemblyai_api_key is empty.
	AssemblyAIKeyEnv = "ASSEMBLYAI_API_KEY"

	assemblyAIBaseURL      = "https://api.assemblyai.com/v2"
	assemblyAIPollInterval = 1200 * time.Millisecond
	assemblyAIDeadline     = 300 * time.Second
)

// errJobPending is returned by a poll that saw a non-terminal status.
var errJobPending = errors.New("transcription job pending")

// AssemblyAITranscriber uploads recordings and polls the transcription job.
type AssemblyAITranscriber struct {
	apiKey   string
	language string
	baseURL  string
	client   *http.Client

	pollInterval time.Duration
	deadline     time.Duration
}

type assemblyAIJob struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// NewAssemblyAITranscriber returns a client for the given API key.
func NewAssemblyAITranscriber(apiKey, language string) (*AssemblyAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("transcribe: %w: AssemblyAI key missing (set assemblyai_api_key or %s)",
			ErrBackendUnavailable, AssemblyAIKeyEnv)
	}
	return &AssemblyAITranscriber{
		apiKey:       apiKey,
		language:     AssemblyAILanguage(language),
		baseURL:      assemblyAIBaseURL,
		client:       &http.Client{Timeout: 120 * time.Second},
		pollInterval: assemblyAIPollInterval,
		deadline:     assemblyAIDeadline,
	}, nil
}

// Close is a no-op; the HTTP client holds no resources that need release.
func (t *AssemblyAITranscriber) Close() error { return nil }

// Transcribe uploads the file, creates a job and waits for it to finish.
func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	uploadURL, err := t.upload(ctx, audioPath)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(map[string]any{
		"audio_url":     uploadURL,
		"language_code": t.language,
		"punctuate":     true,
		"format_text":   true,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: encoding job request: %w", err)
	}
	var job assemblyAIJob
	if err := t.do(ctx, http.MethodPost, "/transcript", bytes.NewReader(body), "application/json", &job); err != nil {
		return "", err
	}
	if job.ID == "" {
		return "", fmt.Errorf("transcribe: %w: AssemblyAI returned no transcript id", ErrBackend)
	}

	text, err := backoff.Retry(ctx, func() (string, error) {
		return t.poll(ctx, job.ID)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(t.pollInterval)),
		backoff.WithMaxElapsedTime(t.deadline),
	)
	if errors.Is(err, errJobPending) {
		return "", fmt.Errorf("transcribe: %w: AssemblyAI job %s not finished after %s", ErrBackendTimeout, job.ID, t.deadline)
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (t *AssemblyAITranscriber) upload(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("transcribe: opening audio file: %w", err)
	}
	defer f.Close()

	var out struct {
		UploadURL string `json:"upload_url"`
	}
	if err := t.do(ctx, http.MethodPost, "/upload", f, "application/octet-stream", &out); err != nil {
		return "", err
	}
	if out.UploadURL == "" {
		return "", fmt.Errorf("transcribe: %w: AssemblyAI returned no upload url", ErrBackend)
	}
	return out.UploadURL, nil
}

// poll fetches the job once. Terminal failures are wrapped as permanent so
// the retry loop stops.
func (t *AssemblyAITranscriber) poll(ctx context.Context, id string) (string, error) {
	var job assemblyAIJob
	if err := t.do(ctx, http.MethodGet, "/transcript/"+id, nil, "", &job); err != nil {
		return "", backoff.Permanent(err)
	}
	switch job.Status {
	case "completed":
		return strings.TrimSpace(job.Text), nil
	case "error":
		msg := job.Error
		if msg == "" {
			msg = "transcription failed"
		}
		return "", backoff.Permanent(fmt.Errorf("transcribe: %w: AssemblyAI: %s", ErrBackend, msg))
	default:
		return "", errJobPending
	}
}

func (t *AssemblyAITranscriber) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("transcribe: building request: %w", err)
	}
	req.Header.Set("Authorization", t.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("transcribe: %w: %w", ErrBackendTimeout, err)
		}
		return fmt.Errorf("transcribe: %w: %s %s: %w", ErrBackend, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("transcribe: %w: AssemblyAI %s %s: HTTP %d: %s",
			ErrBackend, method, path, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("transcribe: %w: decoding AssemblyAI response: %w", ErrBackend, err)
	}
	return nil
}
