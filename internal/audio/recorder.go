package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/gen2brain/malgo"
)

var (
	// ErrAlreadyRecording is returned by Start while a capture stream is open.
	ErrAlreadyRecording = errors.New("already recording")
	// ErrNotRecording is returned by Stop when no capture stream is open.
	ErrNotRecording = errors.New("not recording")
	// ErrNoAudioCaptured is returned by Stop when the stream delivered no frames.
	ErrNoAudioCaptured = errors.New("no audio captured")
)

// captureDevice is the subset of *malgo.Device the recorder drives.
type captureDevice interface {
	Start() error
	Uninit()
}

// deviceOpener opens a mono float32 capture device that delivers frames to onData.
type deviceOpener func(sampleRate uint32, onData malgo.DataProc) (captureDevice, error)

// Recorder captures audio from the default microphone and writes each
// recording to a temporary 16-bit mono WAV file.
type Recorder struct {
	ctx        *malgo.AllocatedContext
	open       deviceOpener
	sampleRate uint32
	tempDir    string

	// mu serializes Start/Stop and guards device. The data callback never
	// takes it, so Uninit can block on the driver without deadlocking.
	mu        sync.Mutex
	device    captureDevice
	recording bool

	bufMu sync.Mutex
	buf   []float32
}

// NewRecorder creates a recorder for the default capture device. Call Close() when done.
func NewRecorder(sampleRate uint32) (*Recorder, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}

	r := newRecorder(sampleRate, func(rate uint32, onData malgo.DataProc) (captureDevice, error) {
		deviceCfg := malgo.DefaultDeviceConfig(malgo.Capture)
		deviceCfg.Capture.Format = malgo.FormatF32
		deviceCfg.Capture.Channels = 1
		deviceCfg.SampleRate = rate

		device, err := malgo.InitDevice(ctx.Context, deviceCfg, malgo.DeviceCallbacks{Data: onData})
		if err != nil {
			return nil, err
		}
		return device, nil
	})
	r.ctx = ctx
	return r, nil
}

func newRecorder(sampleRate uint32, open deviceOpener) *Recorder {
	return &Recorder{
		open:       open,
		sampleRate: sampleRate,
		tempDir:    os.TempDir(),
	}
}

// SampleRate returns the capture rate in Hz.
func (r *Recorder) SampleRate() uint32 {
	return r.sampleRate
}

// Start opens the capture stream and begins accumulating samples.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return ErrAlreadyRecording
	}

	r.bufMu.Lock()
	r.buf = r.buf[:0] // reset buffer but keep capacity
	r.bufMu.Unlock()

	device, err := r.open(r.sampleRate, r.onData)
	if err != nil {
		return fmt.Errorf("initializing capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("starting capture device: %w", err)
	}

	r.device = device
	r.recording = true
	return nil
}

// Stop closes the capture stream and writes the recording to a new
// temporary WAV file whose path is returned. The caller owns the file.
// When nothing was captured the recorder is left ready for another Start.
func (r *Recorder) Stop() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return "", ErrNotRecording
	}

	// Uninit joins the driver thread, so no callback runs after this.
	r.device.Uninit()
	r.device = nil
	r.recording = false

	r.bufMu.Lock()
	samples := make([]float32, len(r.buf))
	copy(samples, r.buf)
	r.bufMu.Unlock()

	if len(samples) == 0 {
		return "", ErrNoAudioCaptured
	}

	f, err := os.CreateTemp(r.tempDir, "voicetyper_*.wav")
	if err != nil {
		return "", fmt.Errorf("creating audio file: %w", err)
	}
	path := f.Name()

	if err := WriteWAV(f, samples, int(r.sampleRate)); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing audio file: %w", err)
	}
	return path, nil
}

// IsRecording returns whether the recorder is currently capturing audio.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Close discards any active recording and releases all audio resources.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.device != nil {
		r.device.Uninit()
		r.device = nil
	}
	r.recording = false
	r.mu.Unlock()

	if r.ctx != nil {
		if err := r.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninitializing audio context: %w", err)
		}
		r.ctx.Free()
		r.ctx = nil
	}

	return nil
}

// onData is the malgo callback invoked when audio data is available.
// pSample contains the captured mono frames as little-endian float32.
func (r *Recorder) onData(_, pSample []byte, frameCount uint32) {
	samples := bytesToFloat32(pSample, frameCount)

	r.bufMu.Lock()
	r.buf = append(r.buf, samples...)
	r.bufMu.Unlock()
}

// bytesToFloat32 converts raw bytes (little-endian float32) to a float32 slice.
func bytesToFloat32(data []byte, sampleCount uint32) []float32 {
	samples := make([]float32, 0, sampleCount)
	for i := uint32(0); i < sampleCount; i++ {
		offset := i * 4
		if offset+4 > uint32(len(data)) {
			break
		}
		bits := binary.LittleEndian.Uint32(data[offset : offset+4])
		samples = append(samples, math.Float32frombits(bits))
	}
	return samples
}
