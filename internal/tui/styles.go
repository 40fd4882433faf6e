package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("#10B981")
	mutedColor  = lipgloss.Color("#9ca3af")
	ruleColor   = lipgloss.Color("#4b5563")
	dangerColor = lipgloss.Color("#EF4444")
)

type styles struct {
	title   lipgloss.Style
	badge   lipgloss.Style
	axis    lipgloss.Style
	muted   lipgloss.Style
	err     lipgloss.Style
	tooltip lipgloss.Style
	stat    lipgloss.Style

	line   lipgloss.Style
	area   lipgloss.Style
	rule   lipgloss.Style
	guide  lipgloss.Style
	marker lipgloss.Style
	blank  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		badge:   lipgloss.NewStyle().Foreground(accentColor).Bold(true),
		axis:    lipgloss.NewStyle().Foreground(mutedColor),
		muted:   lipgloss.NewStyle().Foreground(mutedColor),
		err:     lipgloss.NewStyle().Foreground(dangerColor),
		tooltip: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(mutedColor).Padding(0, 1),
		stat:    lipgloss.NewStyle().Bold(true),

		line:   lipgloss.NewStyle().Foreground(accentColor),
		area:   lipgloss.NewStyle().Foreground(accentColor).Faint(true),
		rule:   lipgloss.NewStyle().Foreground(ruleColor),
		guide:  lipgloss.NewStyle().Foreground(mutedColor),
		marker: lipgloss.NewStyle().Foreground(accentColor).Bold(true),
		blank:  lipgloss.NewStyle(),
	}
}

func (s styles) cell(k cellKind) lipgloss.Style {
	switch k {
	case cellLine:
		return s.line
	case cellArea:
		return s.area
	case cellGrid:
		return s.rule
	case cellGuide:
		return s.guide
	case cellMarker:
		return s.marker
	default:
		return s.blank
	}
}
