// Package settings implements the interactive settings editor.
package settings

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chaz8081/voicetyper/internal/config"
)

// SaveFunc persists a config to path.
type SaveFunc func(cfg *config.Config, path string) error

// Model is the bubbletea model for the settings form. It edits a copy of
// the config and only writes it on an explicit save.
type Model struct {
	cfg    config.Config
	path   string
	save   SaveFunc
	fields []field

	cursor  int
	editing bool
	input   string

	dirty    bool
	saved    bool
	status   string
	errMsg   string
	quitting bool
}

// New creates a settings model editing a copy of cfg that saves to path.
func New(cfg *config.Config, path string) Model {
	return newModel(cfg, path, config.Save)
}

func newModel(cfg *config.Config, path string, save SaveFunc) Model {
	return Model{
		cfg:    *cfg,
		path:   path,
		save:   save,
		fields: formFields(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Config returns the edited config.
func (m Model) Config() *config.Config {
	c := m.cfg
	return &c
}

// Saved reports whether the config was written at least once.
func (m Model) Saved() bool {
	return m.saved
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.editing {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""
	switch msg.String() {
	case KeyQuit, KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case KeyUp, KeyK:
		if m.cursor > 0 {
			m.cursor--
		}

	case KeyDown, KeyJ:
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}

	case KeyLeft, KeyH:
		m.step(-1)

	case KeyRight, KeyL, KeySpace:
		m.step(1)

	case KeyEnter:
		f := m.fields[m.cursor]
		switch f.kind {
		case kindBool, kindChoice:
			m.step(1)
		default:
			m.editing = true
			m.input = f.get(&m.cfg)
			m.status = ""
		}

	case KeySave:
		m.commitSave()
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		m.editing = false
		m.input = ""
	case tea.KeyEnter:
		m.commitEdit()
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

// step cycles a choice or toggles a bool on the selected field.
func (m *Model) step(dir int) {
	f := m.fields[m.cursor]
	switch f.kind {
	case kindBool:
		if f.get(&m.cfg) == "yes" {
			f.set(&m.cfg, "no")
		} else {
			f.set(&m.cfg, "yes")
		}
	case kindChoice:
		f.set(&m.cfg, cycle(f.choices, f.get(&m.cfg), dir))
	default:
		return
	}
	m.dirty = true
	m.status = ""
}

func (m *Model) commitEdit() {
	f := m.fields[m.cursor]
	value := strings.TrimSpace(m.input)

	switch f.key {
	case "sample_rate":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			m.errMsg = fmt.Sprintf("%s must be a positive integer", f.key)
			return
		}
	case "hotkey":
		norm, err := config.NormalizeHotkey(value)
		if err != nil {
			m.errMsg = fmt.Sprintf("Invalid hotkey: %v", err)
			return
		}
		value = norm
	}

	f.set(&m.cfg, value)
	m.editing = false
	m.input = ""
	m.dirty = true
	m.status = ""
}

func (m *Model) commitSave() {
	if norm, err := config.NormalizeHotkey(m.cfg.Hotkey); err == nil {
		m.cfg.Hotkey = norm
	}
	if err := m.cfg.Validate(); err != nil {
		m.errMsg = err.Error()
		return
	}
	if err := m.save(&m.cfg, m.path); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.dirty = false
	m.saved = true
	m.status = "Saved to " + m.path
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("voicetyper settings"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.path))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		label := labelStyle.Render(f.label)
		value := m.displayValue(f)

		switch {
		case i == m.cursor && m.editing:
			value = editStyle.Render(m.input + "█")
		case i == m.cursor:
			label = selectedStyle.Render(labelStyle.Render(f.label))
			value = selectedStyle.Render(value)
		}
		b.WriteString(cursor + label + value + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.errMsg != "":
		b.WriteString(errorStyle.Render(m.errMsg))
	case m.status != "":
		b.WriteString(savedStyle.Render(m.status))
	case m.dirty:
		b.WriteString(dimStyle.Render("Unsaved changes"))
	}
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) displayValue(f field) string {
	v := f.get(&m.cfg)
	switch {
	case f.kind == kindSecret && v != "":
		return maskSecret(v)
	case v == "":
		return dimStyle.Render("(not set)")
	case f.kind == kindChoice:
		return "< " + v + " >"
	}
	return v
}

func (m Model) footer() string {
	key := footerKeyStyle.Render
	if m.editing {
		return fmt.Sprintf("%s confirm  %s cancel", key("enter"), key("esc"))
	}
	return fmt.Sprintf("%s move  %s change  %s edit  %s save  %s quit",
		key("↑/↓"), key("←/→"), key("enter"), key("ctrl+s"), key("q"))
}

// maskSecret hides all but the last four characters.
func maskSecret(s string) string {
	r := []rune(s)
	if len(r) <= 4 {
		return strings.Repeat("•", len(r))
	}
	return strings.Repeat("•", len(r)-4) + string(r[len(r)-4:])
}

// Run opens the settings editor for the config at path and reports
// whether it was saved before the user quit.
func Run(cfg *config.Config, path string) (bool, error) {
	final, err := tea.NewProgram(New(cfg, path), tea.WithAltScreen()).Run()
	if err != nil {
		return false, fmt.Errorf("settings: %w", err)
	}
	m, ok := final.(Model)
	return ok && m.Saved(), nil
}
