// Package style provides a functional API for composing and applying lipgloss-based CLI styles.
package style

import (
	"strings"

	"github.com/Ducheved/sharpmote/color"
	"github.com/charmbracelet/lipgloss"
)

// New returns an empty lipgloss.Style used as a foundation for visual composition.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Colored initializes a new style with the specified foreground and background colors.
func Colored(fg, bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(fg).Background(bg)
}

// Fg returns a stateless rendering function that applies the specified foreground color to a string.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(c, "").Render(s) }
}

// Standard Text Transformation Helpers - these functions apply common typographic styles like bold or italics.
var (
	Faint  = func(s string) string { return New().Faint(true).Render(s) }
	Bold   = func(s string) string { return New().Bold(true).Render(s) }
)

// Title renders a padded banner used for command headers.
var Title = func(s string) string {
	return Colored(color.New("230"), color.New("62")).Padding(0, 1).Render(s)
}

// Heading renders a bold header in the given color.
func Heading(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Bold(true).Foreground(c).Render(s) }
}

// Playback colors a playback status word: green while playing, yellow when paused, faint otherwise.
func Playback(status string) string {
	switch strings.ToLower(status) {
	case "playing":
		return Fg(SuccessColor)(status)
	case "paused":
		return Fg(WarningColor)(status)
	default:
		return Faint(status)
	}
}
