// Package hotkey provides a global hotkey listener using gohook.
// Every key-down of the configured chord emits one toggle event.
package hotkey

import (
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
)

// Listener manages a global hotkey and emits toggle events.
type Listener struct {
	keys []string
	ch   chan struct{}
	done chan struct{}
	once sync.Once
}

// NewListener creates a Listener for a canonical chord such as "<ctrl>+<alt>+d".
func NewListener(chord string) *Listener {
	return &Listener{
		keys: Keys(chord),
		ch:   make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Keys converts a canonical chord to gohook key names, e.g.
// "<ctrl>+<alt>+d" to ["ctrl", "alt", "d"].
func Keys(chord string) []string {
	var keys []string
	for _, part := range strings.Split(chord, "+") {
		part = strings.TrimSpace(part)
		part = strings.TrimSuffix(strings.TrimPrefix(part, "<"), ">")
		if part != "" {
			keys = append(keys, strings.ToLower(part))
		}
	}
	return keys
}

// Events returns the channel that receives one value per chord press.
// At most one press is held while the consumer is busy; further presses
// are dropped. The channel is closed when the listener stops.
func (l *Listener) Events() <-chan struct{} {
	return l.ch
}

// Start begins listening for the global hotkey.
// This function blocks until Stop is called. Run it in a goroutine.
func (l *Listener) Start() {
	hook.Register(hook.KeyDown, l.keys, func(e hook.Event) {
		l.emit()
	})

	evChan := hook.Start()
	go func() {
		<-l.done
		hook.End()
	}()
	<-hook.Process(evChan)
	close(l.ch)
}

// emit delivers one event without blocking the hook thread.
func (l *Listener) emit() {
	select {
	case l.ch <- struct{}{}:
	default: // drop presses while the consumer is behind
	}
}

// Stop terminates the hotkey listener.
// It is safe to call multiple times.
func (l *Listener) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
}
