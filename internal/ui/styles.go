package ui

import "github.com/charmbracelet/lipgloss"

var palette = struct {
	Base     lipgloss.Color
	Surface1 lipgloss.Color
	Text     lipgloss.Color
	Subtext1 lipgloss.Color
	Overlay0 lipgloss.Color
	Green    lipgloss.Color
	Yellow   lipgloss.Color
	Red      lipgloss.Color
}{
	Base:     lipgloss.Color("#1e1e2e"),
	Surface1: lipgloss.Color("#45475a"),
	Text:     lipgloss.Color("#cdd6f4"),
	Subtext1: lipgloss.Color("#bac2de"),
	Overlay0: lipgloss.Color("#6c7086"),
	Green:    lipgloss.Color("#a6e3a1"),
	Yellow:   lipgloss.Color("#f9e2af"),
	Red:      lipgloss.Color("#f38ba8"),
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(palette.Text).
			Background(palette.Surface1)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(palette.Subtext1).
				Background(palette.Surface1)

	helpStyle = lipgloss.NewStyle().
			Foreground(palette.Subtext1).
			Background(palette.Surface1)

	errorStyle = lipgloss.NewStyle().Foreground(palette.Red)

	dimStyle = lipgloss.NewStyle().Foreground(palette.Overlay0)
)

// loadColor grades a utilization percentage like the rest of the pack's
// dashboards: green, then yellow past 50, red past 80.
func loadColor(percent float64) lipgloss.Color {
	switch {
	case percent > 80:
		return palette.Red
	case percent > 50:
		return palette.Yellow
	default:
		return palette.Green
	}
}
