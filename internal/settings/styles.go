package settings

import "github.com/charmbracelet/lipgloss"

// Colors used by the settings editor.
var (
	ColorRed    = lipgloss.Color("#FF0000")
	ColorGreen  = lipgloss.Color("#00FF00")
	ColorYellow = lipgloss.Color("#FFFF00")
	ColorCyan   = lipgloss.Color("#00FFFF")
	ColorGray   = lipgloss.Color("#666666")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	labelStyle = lipgloss.NewStyle().
			Width(24)

	selectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	editStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	errorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	savedStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)
)
