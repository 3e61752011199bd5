package config

import (
	"errors"
	"strings"
)

// ErrEmptyHotkey is returned when a hotkey string contains no keys.
var ErrEmptyHotkey = errors.New("hotkey is empty")

var modifierAliases = map[string]string{
	"ctrl":    "<ctrl>",
	"control": "<ctrl>",
	"alt":     "<alt>",
	"option":  "<alt>",
	"shift":   "<shift>",
	"cmd":     "<cmd>",
	"command": "<cmd>",
	"win":     "<cmd>",
	"windows": "<cmd>",
}

// NormalizeHotkey converts a "+"-joined chord such as "Ctrl+Alt+D" to its
// canonical form "<ctrl>+<alt>+d". Bracketed tokens pass through unchanged.
// Normalizing an already normalized chord returns it as is.
func NormalizeHotkey(hotkey string) (string, error) {
	var parts []string
	for _, part := range strings.Split(hotkey, "+") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "<") && strings.HasSuffix(part, ">") {
			parts = append(parts, part)
			continue
		}
		if alias, ok := modifierAliases[part]; ok {
			part = alias
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return "", ErrEmptyHotkey
	}
	return strings.Join(parts, "+"), nil
}
