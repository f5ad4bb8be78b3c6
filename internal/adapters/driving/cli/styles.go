package cli

import "github.com/charmbracelet/lipgloss"

// Output styles. Kept muted: this is a pipeline tool, not a TUI.
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	stylePath = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#06B6D4"))

	styleScore = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1"))

	styleMuted = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	styleWarn = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9E2AF"))
)
