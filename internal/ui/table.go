package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-focused Bubbles table sized to fit every row.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+2), // header line plus its bottom border
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// Nothing is selected in CLI output, so the cursor row must look like
	// every other row.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string for CLI output.
// Returns "" when there are no rows.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	return NewTable(columns, tableRows).View()
}

// KeyValue is one line of a summary block.
type KeyValue struct {
	Key   string
	Value string
}

// RenderSummary renders aligned "key  value" lines, e.g. fleet aggregates
// under the workers table.
func RenderSummary(items []KeyValue) string {
	width := 0
	for _, kv := range items {
		if w := lipgloss.Width(kv.Key); w > width {
			width = w
		}
	}

	keyStyle := MutedStyle()
	var b strings.Builder
	for _, kv := range items {
		b.WriteString(keyStyle.Render(padRight(kv.Key, width)))
		b.WriteString("  ")
		b.WriteString(kv.Value)
		b.WriteString("\n")
	}
	return b.String()
}

// padRight pads a string to the specified visible width.
func padRight(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
