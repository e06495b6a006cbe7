package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Command succeeded
	SymbolFail     = "✗" // Command failed
	SymbolPending  = "○" // Not yet started
	SymbolComplete = "●" // Done
	SymbolSkipped  = "⊘" // Declined or skipped
)
