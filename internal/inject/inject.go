// Package inject types text into the active application using robotgo
// keystroke simulation or a clipboard paste.
package inject

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// ErrTyping wraps every failure to inject text.
var ErrTyping = errors.New("typing failed")

// settleDelay lets the hotkey's own key-release events finish before
// synthetic keystrokes start, so no modifier is still held.
const settleDelay = 80 * time.Millisecond

// restoreDelay gives the target app time to read the clipboard after the
// paste chord before the previous contents are written back.
const restoreDelay = 250 * time.Millisecond

const (
	MethodType  = "type"
	MethodPaste = "paste"
)

// keyboard is the OS input surface the typer drives.
type keyboard interface {
	Type(text string)
	KeyTap(key string, modifiers ...string) error
	ReadClipboard() (string, error)
	WriteClipboard(text string) error
}

// Typer handles typing or pasting text into the active application.
type Typer struct {
	method string
	kb     keyboard
	delay  time.Duration
	sleep  func(time.Duration)
}

// NewTyper creates a Typer with the given method.
// method must be "type" (keystroke simulation) or "paste" (clipboard).
func NewTyper(method string) *Typer {
	return newTyper(method, robotKeyboard{})
}

func newTyper(method string, kb keyboard) *Typer {
	return &Typer{
		method: method,
		kb:     kb,
		delay:  settleDelay,
		sleep:  time.Sleep,
	}
}

// TypeText sends text to the active application after the settle delay.
// A panic inside the input library is returned as an error.
func (t *Typer) TypeText(text string) (err error) {
	if text == "" {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("inject: %w: %v", ErrTyping, r)
		}
	}()

	t.sleep(t.delay)

	switch t.method {
	case MethodPaste:
		return t.paste(text)
	default:
		t.kb.Type(text)
		return nil
	}
}

// paste copies text to the clipboard, taps the platform paste chord and
// restores the previous clipboard contents.
func (t *Typer) paste(text string) error {
	// Save current clipboard
	prev, _ := t.kb.ReadClipboard()

	if err := t.kb.WriteClipboard(text); err != nil {
		return fmt.Errorf("inject: %w: write to clipboard: %w", ErrTyping, err)
	}

	mod := pasteModifier()
	if err := t.kb.KeyTap("v", mod); err != nil {
		return fmt.Errorf("inject: %w: key tap %s+v: %w", ErrTyping, mod, err)
	}

	// Restore previous clipboard (best effort)
	t.sleep(restoreDelay)
	_ = t.kb.WriteClipboard(prev)

	return nil
}

func pasteModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}
