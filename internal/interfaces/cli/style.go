package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen = lipgloss.Color("#22A06B")
	colorRed   = lipgloss.Color("#D93025")
	colorAmber = lipgloss.Color("#F59E0B")
	colorSlate = lipgloss.Color("#667085")
)

const (
	iconCheck   = "✓"
	iconCross   = "✗"
	iconWarning = "!"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorAmber).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorSlate)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	titleStyle   = lipgloss.NewStyle().Bold(true)
)
