package inject

import "github.com/go-vgo/robotgo"

// robotKeyboard drives the real keyboard and clipboard through robotgo.
type robotKeyboard struct{}

func (robotKeyboard) Type(text string) {
	robotgo.Type(text)
}

func (robotKeyboard) KeyTap(key string, modifiers ...string) error {
	args := make([]interface{}, len(modifiers))
	for i, m := range modifiers {
		args[i] = m
	}
	return robotgo.KeyTap(key, args...)
}

func (robotKeyboard) ReadClipboard() (string, error) {
	return robotgo.ReadAll()
}

func (robotKeyboard) WriteClipboard(text string) error {
	return robotgo.WriteAll(text)
}
