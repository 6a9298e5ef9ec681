package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/swarmreport/swarmreport/server/internal/freshness"
)

const (
	draculaForeground = "#F8F8F2"
	draculaCurrent    = "#44475A"
	draculaCyan       = "#8BE9FD"
	draculaGreen      = "#50FA7B"
	draculaPurple     = "#BD93F9"
	draculaRed        = "#FF5555"
	draculaYellow     = "#F1FA8C"
	draculaComment    = "#6272A4"
)

type styles struct {
	panel, title, label, value, dim, selected, statusBar, keyHint lipgloss.Style
	recent, normal, stale                                         lipgloss.Style
}

func newStyles() styles {
	return styles{
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(draculaPurple)).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaForeground)).
			Bold(true),
		label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaForeground)).
			Bold(true),
		value: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaCyan)),
		dim: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaComment)),
		selected: lipgloss.NewStyle().
			Background(lipgloss.Color(draculaCurrent)).
			Bold(true),
		statusBar: lipgloss.NewStyle().
			Background(lipgloss.Color(draculaCurrent)).
			Foreground(lipgloss.Color(draculaForeground)),
		keyHint: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaYellow)),
		recent: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaGreen)),
		normal: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaYellow)),
		stale:  lipgloss.NewStyle().Foreground(lipgloss.Color(draculaRed)),
	}
}

// class returns the style for a freshness class.
func (s styles) class(c freshness.Class) lipgloss.Style {
	switch c {
	case freshness.Recent:
		return s.recent
	case freshness.Normal:
		return s.normal
	default:
		return s.stale
	}
}

// load colors a CPU percentage: red above 80, yellow above 60.
func (s styles) load(cpu float64) lipgloss.Style {
	switch {
	case cpu > 80:
		return s.stale
	case cpu > 60:
		return s.normal
	default:
		return s.recent
	}
}

func icon(c freshness.Class) string {
	switch c {
	case freshness.Recent:
		return "●"
	case freshness.Normal:
		return "◐"
	default:
		return "○"
	}
}
