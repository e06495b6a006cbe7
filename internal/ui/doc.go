// Package ui provides terminal output helpers for the one-shot fleetdash
// commands (workers, spawn, terminate, parse).
//
// The full-screen dashboard lives in internal/monitor and has its own
// styles; this package covers plain CLI output:
//
//	Spinner       - Animated indicator while a fleet command runs
//	NewTable      - Bubbles table styled for non-interactive output
//	RenderSummary - Aligned key/value lines, e.g. fleet aggregates
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Successful commands
//	ColorError     (red)    - Failures
//	ColorWarning   (yellow) - Declined or skipped commands
//	ColorMuted     (gray)   - Secondary text, timing info
//
// Use DisableColors() (--no-color) or ApplyColorMode with the configured
// output.color to pick a color profile.
//
// # Spinner Usage
//
//	s := ui.NewSpinner("Spawning worker")
//	s.Start()
//	// ... do work ...
//	s.Success() // or s.Fail() or s.Skip()
package ui
