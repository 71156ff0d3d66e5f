// Package ui renders repodoc results for the terminal.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Semantic colors.
var (
	Destructive = lipgloss.Color("#e53935") // Red
	Success     = lipgloss.Color("#8BC34A") // Lime Green
	Warning     = lipgloss.Color("#FFC107") // Yellow
	Info        = lipgloss.Color("#2196F3") // Blue
	Accent      = lipgloss.Color("#4db6ac") // Teal
	Highlight   = lipgloss.Color("#ab47bc") // Magenta
	Subtle      = lipgloss.Color("#8a8f98")
)

// Styles holds the styled components, bound to one renderer so output going
// to a file or pipe comes out without escape codes.
type Styles struct {
	Bold      lipgloss.Style
	Header    lipgloss.Style
	Heading   lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Highlight lipgloss.Style
	Key       lipgloss.Style
	Panel     lipgloss.Style

	TableHeader lipgloss.Style
	Cell        lipgloss.Style
}

// NewStyles builds the styles for r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Bold:      r.NewStyle().Bold(true),
		Header:    r.NewStyle().Bold(true).MarginTop(1),
		Heading:   r.NewStyle().Bold(true).Foreground(Accent),
		Success:   r.NewStyle().Foreground(Success),
		Error:     r.NewStyle().Foreground(Destructive),
		Warning:   r.NewStyle().Foreground(Warning),
		Info:      r.NewStyle().Foreground(Info),
		Muted:     r.NewStyle().Faint(true),
		Accent:    r.NewStyle().Foreground(Accent),
		Highlight: r.NewStyle().Foreground(Highlight),
		Key:       r.NewStyle().Foreground(Accent),
		Panel:     r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),

		TableHeader: r.NewStyle().Bold(true).Foreground(Highlight).Padding(0, 1),
		Cell:        r.NewStyle().Padding(0, 1),
	}
}

// Severity returns the style for a severity or priority level.
func (s Styles) Severity(level string) lipgloss.Style {
	switch level {
	case "critical":
		return s.Error.Bold(true)
	case "high":
		return s.Error
	case "medium":
		return s.Warning
	case "low":
		return s.Info
	case "info":
		return s.Muted
	default:
		return s.Cell.UnsetPadding()
	}
}
