package monitor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
)

// Column widths for the worker table
const (
	colCursor  = 2
	colID      = 14
	colHost    = 22
	colStatus  = 11
	colUsage   = 18
	colPages   = 7
	colReport  = 19
	usageBarWd = 8
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	switch {
	case m.prompt != nil:
		return m.renderModal(PromptStyle.Render(
			m.prompt.Prompt() + "\n\n" + LabelStyle.Render("y confirm • n cancel")))
	case m.notice != "":
		return m.renderModal(NoticeStyle.Render(
			m.notice + "\n\n" + LabelStyle.Render("Press enter to dismiss")))
	case m.showHelp:
		return m.renderHelpOverlay()
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(m.renderStats())
	b.WriteString("\n")

	b.WriteString(m.renderSpawnAction())
	b.WriteString("\n\n")

	b.WriteString(m.renderWorkers())

	if m.ShowFooter() {
		b.WriteString("\n\n")
		b.WriteString(m.renderFooter())
	}

	return b.String()
}

// renderHeader renders the title line with endpoint and freshness.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("fleetdash")

	parts := []string{}
	if m.endpoint != "" {
		parts = append(parts, m.endpoint)
	}
	parts = append(parts, "every "+m.interval.String())
	parts = append(parts, m.updatedText())

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	return HeaderStyle.Render(title + stats)
}

func (m Model) updatedText() string {
	if !m.state.Ready || m.state.UpdatedAt.IsZero() {
		return "waiting for first update"
	}
	return "updated " + humanize.RelTime(m.state.UpdatedAt, m.now(), "ago", "from now")
}

// renderStats renders the aggregate cards.
func (m Model) renderStats() string {
	agg := m.state.Aggregates()

	card := func(label, value string) string {
		return StatCardStyle.Render(StatLabelStyle.Render(label) + "\n" + StatValueStyle.Render(value))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Active Workers", strconv.Itoa(agg.ActiveWorkers)),
		card("Avg CPU", FormatPercent(agg.AverageCPU)),
		card("Avg Memory", FormatPercent(agg.AverageMemory)),
		card("Workers", strconv.Itoa(agg.Total)),
	)
}

// renderSpawnAction renders the spawn button, disabled while busy.
func (m Model) renderSpawnAction() string {
	if m.state.Spawning {
		return ActionDisabledStyle.Render(m.spinner.View() + " Spawning...")
	}
	return ActionStyle.Render("+ Spawn Worker") + LabelStyle.Render("  press s")
}

// renderWorkers renders the worker table.
func (m Model) renderWorkers() string {
	if !m.state.Ready {
		return LabelStyle.Render(m.spinner.View() + " Loading workers...")
	}
	if len(m.state.Workers) == 0 {
		return LabelStyle.Render("No workers running. Press s to spawn one.")
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		cell("", colCursor),
		cell("ID", colID),
		cell("HOST", colHost),
		cell("STATUS", colStatus),
		cell("CPU", colUsage),
		cell("MEMORY", colUsage),
		cell("PAGES", colPages),
		cell("LAST REPORT", colReport),
	)

	rows := []string{TableHeaderStyle.Render(header)}
	for i, w := range m.state.Workers {
		rows = append(rows, m.renderRow(w, i == m.selected))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderRow(w fleetapi.Worker, selected bool) string {
	cursor := "  "
	idStyle := ValueStyle
	if selected {
		cursor = RowSelectedStyle.Render("▸ ")
		idStyle = RowSelectedStyle
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell(cursor, colCursor),
		cell(idStyle.Render(truncate(w.ID.String(), colID-1)), colID),
		cell(LabelStyle.Render(truncate(hostPort(w), colHost-1)), colHost),
		cell(StatusStyle(w.Status).Render(StatusText(w.Status)), colStatus),
		cell(CPUCell(w.CPUUsage, usageBarWd), colUsage),
		cell(MemoryCell(w.MemoryUsage, usageBarWd), colUsage),
		cell(ValueStyle.Render(strconv.Itoa(w.ActivePages)), colPages),
		cell(LabelStyle.Render(FormatTimestamp(w.LastReport)), colReport),
	)
}

// renderModal centers a box on screen.
func (m Model) renderModal(box string) string {
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	return FooterStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

func cell(content string, width int) string {
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(content)
}

func hostPort(w fleetapi.Worker) string {
	switch {
	case w.Host == "":
		return "-"
	case w.Port == 0:
		return w.Host
	default:
		return fmt.Sprintf("%s:%d", w.Host, w.Port)
	}
}

// truncate shortens s to max runes, ending with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max < 2 {
		return s
	}
	return string(r[:max-1]) + "…"
}
