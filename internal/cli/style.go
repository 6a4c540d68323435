package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	nameStyle = lipgloss.NewStyle().
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// confidenceBadge renders a score colored by band.
func confidenceBadge(c float64) string {
	badge := fmt.Sprintf("[%.2f]", c)
	switch {
	case c >= 0.7:
		return highStyle.Render(badge)
	case c >= 0.4:
		return mediumStyle.Render(badge)
	default:
		return lowStyle.Render(badge)
	}
}
