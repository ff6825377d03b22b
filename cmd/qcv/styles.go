package main

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	colW      = 9 // width of each operation column in characters
	labelW    = 8 // visual width of the wire label area
	gateNameW = 5 // width of a gate name inside its box
)

// styles bundles the lipgloss styles built from the color config.
type styles struct {
	circuit  lipgloss.Style
	qasm     lipgloss.Style
	controls lipgloss.Style
	title    lipgloss.Style
	gate     lipgloss.Style
	label    lipgloss.Style
	dim      lipgloss.Style
	focused  lipgloss.Style
}

func newStyles(cfg Config) styles {
	return styles{
		circuit: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(cfg.Colors.Circuit)).
			Padding(1),
		qasm: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(cfg.Colors.QASM)).
			Padding(1),
		controls: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(cfg.Colors.Controls)).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(cfg.Colors.Accent)),
		gate: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(cfg.Colors.Gate)),
		label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(cfg.Colors.Label)),
		dim: lipgloss.NewStyle().
			Foreground(lipgloss.Color(cfg.Colors.Dim)),
		focused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(cfg.Colors.Accent)).
			Padding(1),
	}
}
