package style

import "github.com/charmbracelet/lipgloss"

// Status colors.
var (
	SuccessColor = lipgloss.Color("#a6e3a1")
	WarningColor = lipgloss.Color("#f9e2af")
)
