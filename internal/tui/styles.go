package tui

import "github.com/charmbracelet/lipgloss"

// Dark palette lifted from the merchant hub mockups.
const (
	colorGreen  lipgloss.Color = "#00a884"
	colorRed    lipgloss.Color = "#ef4444"
	colorAmber  lipgloss.Color = "#ffbc38"
	colorText   lipgloss.Color = "#e9edef"
	colorMuted  lipgloss.Color = "#8696a0"
	colorFaint  lipgloss.Color = "#3b4a54"
	colorYellow lipgloss.Color = "#f9e2af"
)

var (
	appStyle = lipgloss.NewStyle().Padding(1, 2)

	titleStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	vendorStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)

	subtleStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	helpStyle     = lipgloss.NewStyle().Foreground(colorFaint)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	selectedStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)

	partyStyle   = lipgloss.NewStyle().Foreground(colorAmber).Bold(true)
	amountStyle  = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	stagingStyle = lipgloss.NewStyle().Foreground(colorYellow)
	finalStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	statusStyle  = lipgloss.NewStyle().Foreground(colorYellow)

	saleBarStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	purchaseBarStyle = lipgloss.NewStyle().Foreground(colorRed)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFaint).
			Padding(0, 1)
)
