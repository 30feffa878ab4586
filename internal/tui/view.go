package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/owasp/nestsearch/internal/listing"
	"github.com/owasp/nestsearch/internal/present"
)

func (m Model) View() string {
	var b strings.Builder

	tabs := make([]string, 0, len(m.tabs))
	for i, t := range m.tabs {
		style := m.styles.Tab
		if i == m.active {
			style = m.styles.ActiveTab
		}
		tabs = append(tabs, style.Render(t.Listing().Title))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	if m.input.Focused() || m.input.Value() != "" {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(m.styles.Muted.Render("press / to search"))
	}
	b.WriteString("\n")

	st := m.states[m.active]
	switch {
	case st.Status == listing.StatusIdle || st.Status == listing.StatusLoading:
		b.WriteString(m.spinner.View() + " Loading...")
	case st.Status == listing.StatusFailed:
		b.WriteString(m.styles.Error.Render("Search failed: " + st.Err.Error()))
	default:
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d results", st.Total)))
	}
	b.WriteString("\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	footer := m.styles.Help.Render("←/→ page • tab switch • / search • t theme • q quit")
	if st.TotalPages > 1 {
		footer = m.pager.View() + "  " + footer
	}
	b.WriteString(footer)

	return m.styles.App.Render(b.String())
}

func (m Model) renderCards(st snapshot) string {
	if st.Empty {
		return m.styles.Empty.Render(m.tabs[m.active].Listing().EmptyMessage)
	}

	width := max(m.viewport.Width-4, 20)
	cards := make([]string, 0, len(st.Cards))
	for _, c := range st.Cards {
		cards = append(cards, m.styles.Card.Width(width).Render(m.renderCard(c, width-2)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m Model) renderCard(c present.Card, width int) string {
	var lines []string

	title := m.styles.Title.Render(c.Title)
	if c.Level != nil {
		title += " " + lipgloss.NewStyle().Foreground(lipgloss.Color(c.Level.Color)).Render("["+c.Level.Label+"]")
	}
	lines = append(lines, title)

	if c.Subtitle != "" {
		lines = append(lines, m.styles.Subtitle.Render(c.Subtitle))
	}
	if c.Summary != "" {
		lines = append(lines, m.styles.Summary.Width(width).Render(c.Summary))
	}
	if len(c.Icons) > 0 {
		icons := make([]string, 0, len(c.Icons))
		for _, icon := range c.Icons {
			icons = append(icons, icon.Label+": "+icon.Value)
		}
		lines = append(lines, m.styles.Muted.Render(strings.Join(icons, " · ")))
	}
	if len(c.Leaders) > 0 {
		lines = append(lines, "Leaders: "+strings.Join(c.Leaders, ", "))
	}
	if len(c.TopContributors) > 0 {
		names := make([]string, 0, len(c.TopContributors))
		for _, tc := range c.TopContributors {
			names = append(names, tc.DisplayName())
		}
		lines = append(lines, "Top contributors: "+strings.Join(names, ", "))
	}
	if len(c.Topics) > 0 {
		lines = append(lines, m.styles.Muted.Render("#"+strings.Join(c.Topics, " #")))
	}
	if len(c.Social) > 0 {
		social := make([]string, 0, len(c.Social))
		for _, s := range c.Social {
			social = append(social, s.Title+" "+s.URL)
		}
		lines = append(lines, strings.Join(social, "\n"))
	}
	if c.Button.Label != "" {
		lines = append(lines, m.styles.Button.Render("→ "+c.Button.Label+": "+c.Button.URL))
	}
	return strings.Join(lines, "\n")
}
