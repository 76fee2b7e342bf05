package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorRose   = lipgloss.Color("#FF6B9D")
	colorGold   = lipgloss.Color("#FFD166")
	colorMuted  = lipgloss.Color("#8C8C8C")
	colorWhite  = lipgloss.Color("#EEEEEE")
	colorBorder = lipgloss.Color("#5B3A4A")
)

var (
	styleFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 3)

	styleCouple = lipgloss.NewStyle().
			Foreground(colorRose).
			Bold(true)

	styleTotal = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	styleBreakdown = lipgloss.NewStyle().
			Foreground(colorWhite)

	styleClock = lipgloss.NewStyle().
			Foreground(colorGold)

	styleHeading = lipgloss.NewStyle().
			Foreground(colorRose).
			MarginTop(1)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)
)
