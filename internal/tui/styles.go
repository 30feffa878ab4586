package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/owasp/nestsearch/internal/theme"
)

type styles struct {
	App       lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Summary   lipgloss.Style
	Muted     lipgloss.Style
	Card      lipgloss.Style
	Button    lipgloss.Style
	Error     lipgloss.Style
	Empty     lipgloss.Style
	Help      lipgloss.Style
}

type palette struct {
	fg, bg, muted, accent, border, danger lipgloss.Color
}

var (
	lightPalette = palette{fg: "#111827", bg: "#ffffff", muted: "#6b7280", accent: "#1d7bd7", border: "#d1d5db", danger: "#b91c1c"}
	darkPalette  = palette{fg: "#f3f4f6", bg: "#1f2937", muted: "#9ca3af", accent: "#60a5fa", border: "#4b5563", danger: "#f87171"}
)

func newStyles(t theme.Theme) styles {
	p := lightPalette
	if t.IsDark() {
		p = darkPalette
	}

	return styles{
		App:       lipgloss.NewStyle().Foreground(p.fg).Background(p.bg),
		Tab:       lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().Foreground(p.accent).Bold(true).Underline(true).Padding(0, 1),
		Title:     lipgloss.NewStyle().Foreground(p.fg).Bold(true),
		Subtitle:  lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		Summary:   lipgloss.NewStyle().Foreground(p.fg),
		Muted:     lipgloss.NewStyle().Foreground(p.muted),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1).
			MarginBottom(1),
		Button: lipgloss.NewStyle().Foreground(p.accent),
		Error:  lipgloss.NewStyle().Foreground(p.danger).Bold(true),
		Empty:  lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		Help:   lipgloss.NewStyle().Foreground(p.muted),
	}
}
