package tui

import "github.com/charmbracelet/lipgloss"

// StyleConfig holds the customizable colors for the triage UI.
type StyleConfig struct {
	PrimaryBlue    lipgloss.Color
	AccentBlue     lipgloss.Color
	DarkBackground lipgloss.Color
	CardBackground lipgloss.Color
	TextPrimary    lipgloss.Color
	TextSecondary  lipgloss.Color
	ErrorRed       lipgloss.Color
	WarnYellow     lipgloss.Color
	OkGreen        lipgloss.Color
	BorderColor    lipgloss.Color
	SelectedColor  lipgloss.Color
}

// DefaultStyles returns the default color palette
func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		PrimaryBlue:    lipgloss.Color("#8AB4F8"),
		AccentBlue:     lipgloss.Color("#4285F4"),
		DarkBackground: lipgloss.Color("#1E1E1E"),
		CardBackground: lipgloss.Color("#2D2D2D"),
		TextPrimary:    lipgloss.Color("#E8EAED"),
		TextSecondary:  lipgloss.Color("#9AA0A6"),
		ErrorRed:       lipgloss.Color("#EA4335"),
		WarnYellow:     lipgloss.Color("#FBBC04"),
		OkGreen:        lipgloss.Color("#34A853"),
		BorderColor:    lipgloss.Color("#5F6368"),
		SelectedColor:  lipgloss.Color("#303134"),
	}
}

// TitleStyle returns a title lipgloss style using this config
func (s *StyleConfig) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.PrimaryBlue).
		Bold(true).
		Padding(0, 1)
}

// HelpStyle returns a help text lipgloss style using this config
func (s *StyleConfig) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextSecondary).
		Padding(0, 2)
}

// StatusStyle returns the style for the blame/status line under the list
func (s *StyleConfig) StatusStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextPrimary).
		Padding(0, 1)
}

// NoticeStyle returns the style for the foreign-plugin contact notice
func (s *StyleConfig) NoticeStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.WarnYellow).
		Padding(0, 1)
}

// ViewportStyle returns a viewport container lipgloss style using this config
func (s *StyleConfig) ViewportStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(s.CardBackground).
		Foreground(s.TextPrimary).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.BorderColor)
}
