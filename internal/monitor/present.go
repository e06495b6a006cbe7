package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
)

// Usage colors, matching the web dashboard the manager ships.
const (
	ColorUsageLow    = lipgloss.Color("#2ecc71") // CPU below 50%
	ColorUsageMemLow = lipgloss.Color("#3498db") // memory below 50%
	ColorUsageMid    = lipgloss.Color("#f39c12")
	ColorUsageHigh   = lipgloss.Color("#e74c3c")
)

// Usage tiers are half-open: exactly 50 is mid, exactly 80 is high.
const (
	UsageMidThreshold  = 50.0
	UsageHighThreshold = 80.0
)

// TimestampLayout is how worker report times are displayed.
const TimestampLayout = "2006-01-02 15:04:05"

// InvalidDate is shown for report times that can't be parsed.
const InvalidDate = "Invalid Date"

// StatusClass maps a status code to its badge class.
// Codes outside 0-3 are treated as unknown.
func StatusClass(code fleetapi.StatusCode) string {
	switch code {
	case fleetapi.StatusOK:
		return "status-ok"
	case fleetapi.StatusNotOK:
		return "status-not-ok"
	case fleetapi.StatusError:
		return "status-error"
	default:
		return "status-unknown"
	}
}

// StatusText maps a status code to its badge label.
func StatusText(code fleetapi.StatusCode) string {
	switch code {
	case fleetapi.StatusOK:
		return "OK"
	case fleetapi.StatusNotOK:
		return "NOT OK"
	case fleetapi.StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StatusStyle returns the badge style for a status code.
func StatusStyle(code fleetapi.StatusCode) lipgloss.Style {
	switch StatusClass(code) {
	case "status-ok":
		return StatusOKStyle
	case "status-not-ok":
		return StatusNotOKStyle
	case "status-error":
		return StatusErrorStyle
	default:
		return StatusUnknownStyle
	}
}

// CPUColor picks the color for a CPU percentage. NaN compares false
// against both thresholds and lands in the high tier.
func CPUColor(percent float64) lipgloss.Color {
	return usageColor(percent, ColorUsageLow)
}

// MemoryColor picks the color for a memory percentage.
func MemoryColor(percent float64) lipgloss.Color {
	return usageColor(percent, ColorUsageMemLow)
}

func usageColor(percent float64, low lipgloss.Color) lipgloss.Color {
	if percent < UsageMidThreshold {
		return low
	}
	if percent < UsageHighThreshold {
		return ColorUsageMid
	}
	return ColorUsageHigh
}

// FormatPercent renders a usage value as "12.5%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// offset-less layouts are what the manager's isoformat() produces
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp reads an ISO-8601 timestamp. Values with an offset are
// honored; values without one are taken as local time.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders a worker report time in local time with fixed
// two-digit fields, or InvalidDate when it can't be parsed.
func FormatTimestamp(raw string) string {
	t, ok := ParseTimestamp(raw)
	if !ok {
		return InvalidDate
	}
	return t.In(time.Local).Format(TimestampLayout)
}
