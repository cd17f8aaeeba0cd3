package login

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	code     lipgloss.Style
	url      lipgloss.Style
	detail   lipgloss.Style
	success  lipgloss.Style
	warning  lipgloss.Style
	label    lipgloss.Style
	section  lipgloss.Style
	codeWrap lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		code:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		url:     lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("39")),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		section: lipgloss.NewStyle().MarginTop(1),
		codeWrap: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			BorderForeground(lipgloss.Color("244")),
	}
}
