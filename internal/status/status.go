// Package status reports the dictation state to the user. It only reads
// the state; it never drives the state machine.
package status

import (
	"context"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"

	"github.com/chaz8081/voicetyper/internal/app"
)

// PollInterval is how often the indicator samples the state.
const PollInterval = 500 * time.Millisecond

// StateSource exposes the current dictation state.
type StateSource interface {
	State() app.State
}

// Indicator logs state transitions and optionally raises desktop notifications.
type Indicator struct {
	src      StateSource
	log      zerolog.Logger
	interval time.Duration
	notify   func(title, message string) error
}

// New returns an Indicator for src. With notify set, transitions are also
// shown as desktop notifications.
func New(src StateSource, log zerolog.Logger, notify bool) *Indicator {
	ind := &Indicator{
		src:      src,
		log:      log.With().Str("component", "status").Logger(),
		interval: PollInterval,
	}
	if notify {
		ind.notify = func(title, message string) error {
			return beeep.Notify(title, message, "")
		}
	}
	return ind
}

// Run polls until ctx is cancelled.
func (ind *Indicator) Run(ctx context.Context) {
	ticker := time.NewTicker(ind.interval)
	defer ticker.Stop()

	last := ind.src.State()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := ind.src.State()
			if cur == last {
				continue
			}
			ind.report(last, cur)
			last = cur
		}
	}
}

func (ind *Indicator) report(from, to app.State) {
	ind.log.Debug().Stringer("from", from).Stringer("to", to).Msg("State changed")
	if ind.notify == nil {
		return
	}
	msg := Message(to)
	if msg == "" {
		return
	}
	if err := ind.notify("voicetyper", msg); err != nil {
		ind.log.Debug().Err(err).Msg("Desktop notification failed")
	}
}

// Message is the user-facing text for entering a state.
func Message(s app.State) string {
	switch s {
	case app.Recording:
		return "Recording..."
	case app.Transcribing:
		return "Transcribing..."
	case app.Idle:
		return "Ready"
	default:
		return ""
	}
}
