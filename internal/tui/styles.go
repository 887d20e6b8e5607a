package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#2E7D32")
	colorMuted  = lipgloss.Color("#808080")
	colorWarn   = lipgloss.Color("#FFC107")
)

type styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Card        lipgloss.Style
	CardValue   lipgloss.Style
	CardLabel   lipgloss.Style
	Label       lipgloss.Style
	Placeholder lipgloss.Style
	Map         lipgloss.Style
	Links       lipgloss.Style
	Error       lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Subtitle:    lipgloss.NewStyle().Foreground(colorMuted),
		Card:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1).Width(18),
		CardValue:   lipgloss.NewStyle().Bold(true),
		CardLabel:   lipgloss.NewStyle().Foreground(colorMuted),
		Label:       lipgloss.NewStyle().Bold(true),
		Placeholder: lipgloss.NewStyle().Italic(true).Foreground(colorMuted).Padding(1, 2),
		Map:         lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorMuted).Padding(0, 1),
		Links:       lipgloss.NewStyle().Foreground(colorMuted),
		Error:       lipgloss.NewStyle().Foreground(colorWarn),
	}
}
