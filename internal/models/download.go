// Package models resolves and downloads whisper.cpp ggml model files.
package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/chaz8081/voicetyper/internal/config"
)

const baseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// ErrUnknownModel is returned for model names the download source does not publish.
var ErrUnknownModel = errors.New("unknown whisper model")

// KnownModels lists the model names accepted by WhisperFileName.
var KnownModels = []string{
	"tiny", "tiny.en", "base", "base.en", "small", "small.en",
	"medium", "medium.en", "large-v1", "large-v2", "large-v3", "large-v3-turbo",
}

// int8 builds are published with a model specific quantization.
var quantization = map[string]string{
	"large-v1": "",
	"large-v3": "q5_0",
}

// WhisperFileName returns the ggml file name for a model and compute type.
// int8 selects the quantized build; float16 and float32 select the full one.
func WhisperFileName(model, computeType string) (string, error) {
	known := false
	for _, m := range KnownModels {
		if m == model {
			known = true
			break
		}
	}
	if !known {
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownModel, model, strings.Join(KnownModels, ", "))
	}

	if computeType == "int8" {
		q, ok := quantization[model]
		if !ok {
			q = "q8_0"
		}
		if q != "" {
			return fmt.Sprintf("ggml-%s-%s.bin", model, q), nil
		}
	}
	return fmt.Sprintf("ggml-%s.bin", model), nil
}

// WhisperModelPath resolves the model file for the whisper_model setting.
// A value ending in .bin or containing a path separator is used as a path.
func WhisperModelPath(dir, model, computeType string) (string, error) {
	if strings.HasSuffix(model, ".bin") || strings.ContainsRune(model, os.PathSeparator) {
		return config.ExpandTilde(model), nil
	}
	name, err := WhisperFileName(model, computeType)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// DownloadWhisper downloads the ggml file for model into dir, printing
// progress to out. An existing non-empty file is kept. It returns the path.
func DownloadWhisper(ctx context.Context, dir, model, computeType string, out io.Writer) (string, error) {
	name, err := WhisperFileName(model, computeType)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating models dir: %w", err)
	}

	destPath := filepath.Join(dir, name)

	// Check if already downloaded
	if info, err := os.Stat(destPath); err == nil && info.Size() > 0 {
		fmt.Fprintf(out, "  Whisper model already exists: %s (%.0f MB)\n", destPath, float64(info.Size())/(1024*1024))
		return destPath, nil
	}

	fmt.Fprintf(out, "  Downloading whisper model from HuggingFace...\n")
	fmt.Fprintf(out, "  URL: %s\n", baseURL+name)
	fmt.Fprintf(out, "  Destination: %s\n", destPath)

	if err := download(ctx, baseURL+name, destPath, name, out); err != nil {
		return "", err
	}
	return destPath, nil
}

// download fetches url into destPath via a temp file renamed on success.
func download(ctx context.Context, url, destPath, label string, out io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading whisper model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	// Write to temp file first, then rename (atomic)
	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	pr := &progressWriter{
		writer: f,
		out:    out,
		total:  resp.ContentLength,
		label:  label,
	}

	written, err := io.Copy(pr, resp.Body)
	f.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing model file: %w", err)
	}

	fmt.Fprintf(out, "\n  Downloaded %.1f MB\n", float64(written)/(1024*1024))

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("moving model file: %w", err)
	}

	return nil
}

// progressWriter wraps an io.Writer and prints download progress to out.
type progressWriter struct {
	writer  io.Writer
	out     io.Writer
	total   int64
	written int64
	label   string
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	pw.written += int64(n)
	if pw.total > 0 {
		pct := float64(pw.written) / float64(pw.total) * 100
		fmt.Fprintf(pw.out, "\r  %s: %.1f MB / %.1f MB (%.0f%%)",
			pw.label,
			float64(pw.written)/(1024*1024),
			float64(pw.total)/(1024*1024),
			pct)
	} else {
		fmt.Fprintf(pw.out, "\r  %s: %.1f MB downloaded",
			pw.label,
			float64(pw.written)/(1024*1024))
	}
	return n, err
}
