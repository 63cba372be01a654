package commands

import "github.com/charmbracelet/lipgloss"

var (
	colorRed     = lipgloss.Color("#FF5555")
	colorGreen   = lipgloss.Color("#50FA7B")
	colorCyan    = lipgloss.Color("#8BE9FD")
	colorMagenta = lipgloss.Color("#FF79C6")
	colorWhite   = lipgloss.Color("#F8F8F2")
	colorGray    = lipgloss.Color("#6272A4")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	labelStyle  = lipgloss.NewStyle().Foreground(colorGray)
	valueStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	itemStyle   = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)
	onStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	offStyle    = lipgloss.NewStyle().Foreground(colorRed)
	branchStyle = lipgloss.NewStyle().Foreground(colorGray).MarginRight(1)
)
