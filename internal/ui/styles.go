// Package ui holds the terminal palette and text styles shared by commands.
package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// Color palette
var (
	ColorSuccess = lipgloss.Color("#00D787") // Green
	ColorError   = lipgloss.Color("#FF5F87") // Pink
	ColorWarning = lipgloss.Color("#FFAF00") // Yellow
	ColorInfo    = lipgloss.Color("#5FAFFF") // Blue
	ColorMuted   = lipgloss.Color("#888888") // Mid gray
)

// Text styles
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleBold    = lipgloss.NewStyle().Bold(true)
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
)

// Status styles
var (
	StyleEnabled  = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleDisabled = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleCount    = lipgloss.NewStyle().Foreground(ColorInfo)
)

// GetTerminalWidth returns the current terminal width, or a default fallback.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// PadRight pads s with spaces to width cells. Styled strings are measured
// by their visible width.
func PadRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
