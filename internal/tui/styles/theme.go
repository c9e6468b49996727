package styles

import (
	"imgview/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the core UI styles
type Theme struct {
	App    lipgloss.Style
	Title  lipgloss.Style
	Info   lipgloss.Style
	Page   lipgloss.Style
	Error  lipgloss.Style
	Status lipgloss.Style
	Help   lipgloss.Style
}

// NewTheme builds the styles for one of config.ListThemes.
func NewTheme(name string) Theme {
	colors := config.GetTheme(name)
	return Theme{
		App: lipgloss.NewStyle(),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colors["primary"])),
		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colors["emphasis"])),
		Page: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colors["warning"])),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colors["error"])),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colors["info"])),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colors["border"])),
	}
}

// Default is the dark theme.
var Default = NewTheme("dark")
