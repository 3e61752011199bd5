// Package app sequences one dictation cycle at a time: a hotkey press starts
// recording, the next press stops it and hands the recording to a
// background task that transcribes it and types the text.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chaz8081/voicetyper/internal/config"
	"github.com/chaz8081/voicetyper/internal/history"
)

// State is the session state of the dictation cycle.
type State int

const (
	Idle State = iota
	Recording
	Transcribing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Transcribing:
		return "transcribing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Recorder captures one recording at a time into a file.
type Recorder interface {
	Start() error
	Stop() (string, error)
}

// Transcriber turns a recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Typer injects text at the cursor.
type Typer interface {
	TypeText(text string) error
}

// HistorySink receives one entry per finished cycle.
type HistorySink interface {
	Record(ctx context.Context, e history.Entry) error
}

type cycle struct {
	id        uuid.UUID
	startedAt time.Time
}

// App is the dictation state machine. All session state lives here and is
// guarded by mu, which is never held across a transcription.
type App struct {
	cfg         *config.Config
	recorder    Recorder
	transcriber Transcriber
	typer       Typer
	history     HistorySink
	log         zerolog.Logger
	remove      func(string) error

	mu    sync.Mutex
	state State
	cycle cycle

	tasks sync.WaitGroup
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) { a.log = log }
}

// WithHistory records every finished cycle in h.
func WithHistory(h HistorySink) Option {
	return func(a *App) { a.history = h }
}

// WithRemover replaces the function used to delete recordings.
func WithRemover(remove func(string) error) Option {
	return func(a *App) { a.remove = remove }
}

// New creates an App in the Idle state.
func New(cfg *config.Config, recorder Recorder, transcriber Transcriber, typer Typer, opts ...Option) *App {
	a := &App{
		cfg:         cfg,
		recorder:    recorder,
		transcriber: transcriber,
		typer:       typer,
		log:         zerolog.Nop(),
		remove:      os.Remove,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns the current session state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Toggle advances the state machine for one hotkey press. It never blocks
// on transcription: stopping a recording hands the file to a goroutine.
func (a *App) Toggle() {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case Transcribing:
		a.log.Info().Msg("Busy: still transcribing the previous recording")

	case Idle:
		if err := a.recorder.Start(); err != nil {
			a.log.Error().Err(err).Msg("Failed to start recording")
			return
		}
		a.cycle = cycle{id: uuid.New(), startedAt: time.Now()}
		a.state = Recording
		a.log.Info().Str("cycle", a.cycle.id.String()).Msg("Recording...")

	case Recording:
		path, err := a.recorder.Stop()
		if err != nil {
			a.state = Idle
			a.log.Error().Err(err).Str("cycle", a.cycle.id.String()).Msg("Failed to stop recording")
			return
		}
		a.state = Transcribing
		a.log.Info().
			Str("cycle", a.cycle.id.String()).
			Dur("recorded", time.Since(a.cycle.startedAt).Round(time.Millisecond)).
			Msg("Transcribing...")

		a.tasks.Add(1)
		go a.transcribeAndType(a.cycle, path)
	}
}

// transcribeAndType runs off the hotkey path. Its deferred finalizer always
// deletes the recording and returns the app to Idle, even after a panic.
func (a *App) transcribeAndType(c cycle, path string) {
	log := a.log.With().Str("cycle", c.id.String()).Logger()
	entry := history.Entry{
		CycleID:   c.id,
		Engine:    string(a.cfg.Engine),
		StartedAt: c.startedAt,
		Outcome:   history.OutcomeFailed,
	}

	defer a.tasks.Done()
	defer func() {
		if r := recover(); r != nil {
			entry.Outcome = history.OutcomeFailed
			entry.Error = fmt.Sprint(r)
			log.Error().Interface("panic", r).Msg("Transcription task panicked")
		}
		a.finish(log, path, entry)
	}()

	start := time.Now()
	text, err := a.transcriber.Transcribe(context.Background(), path)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		entry.Error = err.Error()
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("Transcription failed")
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		entry.Outcome = history.OutcomeEmpty
		log.Info().Dur("elapsed", elapsed).Msg("No speech detected")
		return
	}
	log.Info().Dur("elapsed", elapsed).Str("text", text).Msg("Transcribed")

	if a.cfg.AppendSpace {
		text += " "
	}
	entry.Text = text
	if err := a.typer.TypeText(text); err != nil {
		entry.Error = err.Error()
		log.Error().Err(err).Msg("Typing failed")
		return
	}
	entry.Outcome = history.OutcomeTyped
	log.Debug().Msg("Text typed")
}

func (a *App) finish(log zerolog.Logger, path string, entry history.Entry) {
	if err := a.remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("path", path).Msg("Failed to delete recording")
	}

	entry.Duration = time.Since(entry.StartedAt)
	if a.history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.history.Record(ctx, entry); err != nil {
			log.Warn().Err(err).Msg("Failed to record history")
		}
		cancel()
	}

	a.mu.Lock()
	a.state = Idle
	a.mu.Unlock()
}

// Wait blocks until every started transcription task has finished.
func (a *App) Wait() {
	a.tasks.Wait()
}

// Run calls Toggle for every press until ctx is cancelled or presses is
// closed, then discards any active recording.
func (a *App) Run(ctx context.Context, presses <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			a.discardRecording()
			return
		case _, ok := <-presses:
			if !ok {
				a.log.Info().Msg("Hotkey listener stopped")
				a.discardRecording()
				return
			}
			a.Toggle()
		}
	}
}

// discardRecording stops an active recording without transcribing it.
func (a *App) discardRecording() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Recording {
		return
	}
	path, err := a.recorder.Stop()
	a.state = Idle
	if err != nil {
		a.log.Debug().Err(err).Msg("Discarded recording")
		return
	}
	if err := a.remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		a.log.Warn().Err(err).Str("path", path).Msg("Failed to delete recording")
	}
	a.log.Info().Msg("Discarded active recording")
}
