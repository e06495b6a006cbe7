package monitor

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette
const (
	// Background colors
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	// Accent colors
	ColorAccent = lipgloss.Color("#FF2E97")

	// Status badge colors
	ColorStatusOK      = lipgloss.Color("#2ecc71")
	ColorStatusNotOK   = lipgloss.Color("#f39c12")
	ColorStatusUnknown = lipgloss.Color("#95a5a6")
	ColorStatusError   = lipgloss.Color("#e74c3c")
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	// Summary cards across the top
	StatCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1).
			Width(20)

	StatLabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	// Worker table
	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorTextSecondary).
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(ColorBorder)

	RowSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	// Status badges
	statusBadgeBase = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	StatusOKStyle      = statusBadgeBase.Foreground(ColorStatusOK)
	StatusNotOKStyle   = statusBadgeBase.Foreground(ColorStatusNotOK)
	StatusUnknownStyle = statusBadgeBase.Foreground(ColorStatusUnknown)
	StatusErrorStyle   = statusBadgeBase.Foreground(ColorStatusError)

	// Spawn action
	ActionStyle = lipgloss.NewStyle().
			Foreground(ColorDarkBg).
			Background(ColorAccent).
			Bold(true).
			Padding(0, 1)

	ActionDisabledStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted).
				Background(ColorSurfaceBg).
				Padding(0, 1)

	// Modal boxes for notices and confirmation prompts
	NoticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorStatusError).
			Padding(1, 2)

	PromptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(1, 2)
)

// UsageBar renders a bracketless usage bar in the given color.
// Percentages are clamped to 0-100 for the bar only.
func UsageBar(width int, percent float64, color lipgloss.Color) string {
	if width < 1 {
		width = 1
	}

	if percent < 0 || math.IsNaN(percent) {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}

// CPUCell renders a CPU value with its bar, colored by tier.
func CPUCell(percent float64, barWidth int) string {
	c := CPUColor(percent)
	return UsageBar(barWidth, percent, c) + " " + lipgloss.NewStyle().Foreground(c).Render(FormatPercent(percent))
}

// MemoryCell renders a memory value with its bar, colored by tier.
func MemoryCell(percent float64, barWidth int) string {
	c := MemoryColor(percent)
	return UsageBar(barWidth, percent, c) + " " + lipgloss.NewStyle().Foreground(c).Render(FormatPercent(percent))
}
