package terminal

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/slok/dashstatus/internal/model"
)

// https://coolors.co/palette/264653-2a9d8f-e9c46a-f4a261-e76f51
const (
	colorGreen  = lipgloss.Color("#2a9d8f")
	colorRed    = lipgloss.Color("#e76f51")
	colorYellow = lipgloss.Color("#e9c46a")
	colorBlue   = lipgloss.Color("#17a2b8")
	colorPurple = lipgloss.Color("#6610f2")
	colorGrey   = lipgloss.Color("#626262")
)

type styles struct {
	kinds     map[model.StatusKind]lipgloss.Style
	levels    map[model.LogLevel]lipgloss.Style
	title     lipgloss.Style
	timestamp lipgloss.Style
	bar       lipgloss.Style
	online    lipgloss.Style
	offline   lipgloss.Style
	checking  lipgloss.Style
}

var kindIcons = map[model.StatusKind]string{
	model.StatusKindSuccess: "✓",
	model.StatusKindError:   "x",
	model.StatusKindWarning: "!",
	model.StatusKindInfo:    "i",
	model.StatusKindLoading: "…",
}

func newStyles(r *lipgloss.Renderer) styles {
	fg := func(c lipgloss.Color) lipgloss.Style { return r.NewStyle().Foreground(c) }

	return styles{
		kinds: map[model.StatusKind]lipgloss.Style{
			model.StatusKindSuccess: fg(colorGreen).Bold(true),
			model.StatusKindError:   fg(colorRed).Bold(true),
			model.StatusKindWarning: fg(colorYellow).Bold(true),
			model.StatusKindInfo:    fg(colorBlue).Bold(true),
			model.StatusKindLoading: fg(colorPurple).Bold(true),
		},
		levels: map[model.LogLevel]lipgloss.Style{
			model.LogLevelInfo:    fg(colorGreen),
			model.LogLevelWarning: fg(colorYellow),
			model.LogLevelError:   fg(colorRed),
			model.LogLevelSuccess: fg(colorGreen).Bold(true),
		},
		title:     r.NewStyle().Bold(true),
		timestamp: fg(colorGrey),
		bar:       fg(colorBlue),
		online:    fg(colorGreen),
		offline:   fg(colorRed),
		checking:  fg(colorYellow),
	}
}

func (s styles) kind(k model.StatusKind) lipgloss.Style {
	if st, ok := s.kinds[k]; ok {
		return st
	}
	return s.kinds[model.StatusKindInfo]
}

func (s styles) level(l model.LogLevel) lipgloss.Style {
	if st, ok := s.levels[l]; ok {
		return st
	}
	return s.levels[model.LogLevelInfo]
}
