package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned when a file is not a readable PCM WAV container.
var ErrInvalidWAV = errors.New("invalid wav file")

// WriteWAV clips samples to [-1, 1], scales them to signed 16-bit and
// writes them to w as a mono PCM WAV container.
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = toInt16(s)
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("writing wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}

func toInt16(s float32) int {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int(s * 32767)
}

// decode reads a WAV file into a mono int buffer and returns its sample rate.
func decode(path string) ([]int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
	}

	channels := int(dec.NumChans)
	if channels <= 1 {
		return buf.Data, int(dec.SampleRate), nil
	}
	mono := make([]int, len(buf.Data)/channels)
	for i := range mono {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += buf.Data[i*channels+c]
		}
		mono[i] = sum / channels
	}
	return mono, int(dec.SampleRate), nil
}

// ReadWAV decodes a 16-bit WAV file into float32 samples normalized to
// [-1.0, 1.0], mixing multi-channel audio down to mono.
func ReadWAV(path string) ([]float32, int, error) {
	data, rate, err := decode(path)
	if err != nil {
		return nil, 0, err
	}
	samples := make([]float32, len(data))
	for i, s := range data {
		samples[i] = float32(s) / 32768.0
	}
	return samples, rate, nil
}

// ReadPCM16 returns the raw little-endian 16-bit mono PCM payload of a WAV file.
func ReadPCM16(path string) ([]byte, int, error) {
	data, rate, err := decode(path)
	if err != nil {
		return nil, 0, err
	}
	out := make([]byte, len(data)*2)
	for i, s := range data {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s)))
	}
	return out, rate, nil
}
