package tui

import "github.com/charmbracelet/lipgloss"

// StyleConfig holds the colors of the version table.
type StyleConfig struct {
	Header    lipgloss.Color
	Latest    lipgloss.Color
	Installed lipgloss.Color
	Failed    lipgloss.Color
	Muted     lipgloss.Color
	Border    lipgloss.Color
}

func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		Header:    lipgloss.Color("#8AB4F8"),
		Latest:    lipgloss.Color("#FBBC04"),
		Installed: lipgloss.Color("#34A853"),
		Failed:    lipgloss.Color("#EA4335"),
		Muted:     lipgloss.Color("#9AA0A6"),
		Border:    lipgloss.Color("#5F6368"),
	}
}

func (s *StyleConfig) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.Header).Bold(true)
}

func (s *StyleConfig) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.Header).
		Bold(true).
		Padding(0, 1)
}

func (s *StyleConfig) TableStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Border).
		Padding(0, 1)
}
