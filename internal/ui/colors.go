package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// spinnerColors cycle while a spinner animates.
var spinnerColors = []lipgloss.Color{ColorInfo, ColorSecondary, ColorSuccess, ColorSecondary}

// SuccessStyle renders text in the success color.
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorSuccess)
}

// ErrorStyle renders text in the error color.
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorError)
}

// WarningStyle renders text in the warning color.
func WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorWarning)
}

// MutedStyle renders secondary text.
func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted)
}

// DisableColors switches lipgloss to plain ASCII output. Used for --no-color
// and output.color: never.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ForceColors enables truecolor output even when stdout is not a terminal.
// Used for output.color: always.
func ForceColors() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

// ApplyColorMode sets the lipgloss profile for a config color mode
// ("auto", "always" or "never"). Unknown modes behave like auto.
func ApplyColorMode(mode string) {
	switch mode {
	case "never":
		DisableColors()
	case "always":
		ForceColors()
	}
}
