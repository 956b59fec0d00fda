package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	clrBorder = lipgloss.Color("#626262")
	clrWin    = lipgloss.Color("#96CEB4")
	clrTitle  = lipgloss.Color("#7D56F4")

	cellStyle     = lipgloss.NewStyle().Width(3).Align(lipgloss.Center)
	cursorStyle   = cellStyle.Reverse(true)
	winningStyle  = cellStyle.Foreground(clrWin).Bold(true)
	gridStyle     = lipgloss.NewStyle().Foreground(clrBorder)
	statusStyle   = lipgloss.NewStyle().Foreground(clrTitle).Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(clrBorder).Italic(true)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(clrBorder).Padding(0, 1)
)

// DisableColor renders every style as plain text.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
