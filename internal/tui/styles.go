package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#00E0A4")
	danger = lipgloss.Color("#FF4D6D")
	warn   = lipgloss.Color("#FFC857")
	muted  = lipgloss.Color("#6C7A89")

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	gaugeStyle   = lipgloss.NewStyle().Foreground(accent)
	titleStyle   = lipgloss.NewStyle().Bold(true).MarginTop(1)
	cursorStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(danger).Padding(0, 1)
	noticeStyle  = lipgloss.NewStyle().Foreground(warn)
	callStyle    = lipgloss.NewStyle().Foreground(accent).Bold(true)
	putStyle     = lipgloss.NewStyle().Foreground(danger).Bold(true)
	waitStyle    = lipgloss.NewStyle().Foreground(warn).Bold(true)
	helpKeyStyle = lipgloss.NewStyle().Foreground(accent)
)

func actionStyle(action string) lipgloss.Style {
	switch action {
	case "CALL":
		return callStyle
	case "PUT":
		return putStyle
	default:
		return waitStyle
	}
}
