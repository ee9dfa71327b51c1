package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/scoates/vagranttop/internal/models"
)

const (
	minTerminalWidth  = 60
	minTerminalHeight = 12
	widthLarge        = 100
	widthMedium       = 72
)

func (m Model) View() string {
	if m.width < minTerminalWidth || m.height < minTerminalHeight {
		message := fmt.Sprintf("Terminal too small\nMinimum: %dx%d\nCurrent: %dx%d",
			minTerminalWidth, minTerminalHeight, m.width, m.height)
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(palette.Text).
			Background(palette.Base).
			Render(message)
	}

	if m.fatal != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n", m.fatal))
	}

	if !m.polled {
		return dimStyle.Render(" gathering first snapshot...")
	}

	var b strings.Builder
	lines := []string{m.titleLine()}
	lines = append(lines, m.headerLines()...)
	lines = append(lines, "")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(tableHeaderStyle.Width(m.width).Render(m.tableHeader()))
	b.WriteString("\n")

	contentHeight := m.height - len(lines) - 2
	if contentHeight < 1 {
		contentHeight = 1
	}
	shown := 0
	for _, e := range m.entries {
		if shown >= contentHeight {
			break
		}
		b.WriteString(m.formatRow(e))
		b.WriteString("\n")
		shown++
	}
	for ; shown < contentHeight; shown++ {
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Width(m.width).Render(m.helpLine()))
	return b.String()
}

func (m Model) titleLine() string {
	var text string
	switch {
	case m.width >= widthLarge:
		text = fmt.Sprintf(" vagranttop - %d hypervisor workers / %d processes - refresh: %s ",
			len(m.entries), m.total, m.interval)
	default:
		text = fmt.Sprintf(" vagranttop (%d/%d) ", len(m.entries), m.total)
	}
	return titleStyle.Width(m.width).Render(text)
}

// headerLines renders the system summary block above the process table.
func (m Model) headerLines() []string {
	var lines []string
	sys := m.sys

	for i, perc := range sys.CPUPercents {
		style := lipgloss.NewStyle().Foreground(loadColor(perc))
		lines = append(lines, fmt.Sprintf(" CPU%-2d [%s] %5.1f%%", i, style.Render(gauge(perc)), perc))
	}

	used := sys.MemTotal - sys.MemAvailable
	memStyle := lipgloss.NewStyle().Foreground(loadColor(sys.MemPercent))
	lines = append(lines, fmt.Sprintf(" Mem   [%s] %5.1f%% %s/%s",
		memStyle.Render(gauge(sys.MemPercent)), sys.MemPercent,
		formatBytes(used), formatBytes(sys.MemTotal)))

	swapStyle := lipgloss.NewStyle().Foreground(loadColor(sys.SwapPercent))
	lines = append(lines, fmt.Sprintf(" Swap  [%s] %5.1f%% %s/%s",
		swapStyle.Render(gauge(sys.SwapPercent)), sys.SwapPercent,
		formatBytes(sys.SwapUsed), formatBytes(sys.SwapTotal)))

	lines = append(lines, fmt.Sprintf(" Processes: %d (%s)", m.total, formatStatuses(m.statuses)))
	lines = append(lines, fmt.Sprintf(" Load average: %.2f %.2f %.2f  Uptime: %s",
		sys.Load1, sys.Load5, sys.Load15, formatUptime(int64(sys.Uptime.Seconds()))))
	return lines
}

var columnLabels = map[sortColumn]string{
	sortByCPU:    "CPU%",
	sortByMem:    "MEM%",
	sortByTime:   "TIME+",
	sortByPID:    "PID",
	sortByVMDir:  "VM DIR",
	sortByVMName: "VM NAME",
	sortByVMID:   "VM ID",
}

func (m Model) label(col sortColumn) string {
	label := columnLabels[col]
	if m.sortBy == col {
		marker := "<"
		if m.sortDescending {
			marker = ">"
		}
		return marker + label
	}
	return label
}

func (m Model) tableHeader() string {
	return fmt.Sprintf("%7s %5s %5s %9s %-9s %7s %-11s %s",
		m.label(sortByPID),
		m.label(sortByCPU),
		m.label(sortByMem),
		m.label(sortByTime),
		" "+m.label(sortByVMID),
		"VM LOAD",
		" "+m.label(sortByVMDir),
		m.label(sortByVMName))
}

func (m Model) formatRow(e models.ProcessEntry) string {
	nameWidth := m.width - (7 + 1 + 5 + 1 + 5 + 1 + 9 + 1 + 9 + 1 + 7 + 1 + 11 + 1)
	if nameWidth < 8 {
		nameWidth = 8
	}
	row := fmt.Sprintf("%7d %5s %5s %9s %-9s %7s %-11s %s",
		e.PID,
		formatCPUPercent(e.CPUPercent),
		formatMemPercent(e.MemoryPercent),
		formatTimeSum(e.CPUTimesSum),
		" "+truncate(e.VMID, 8),
		e.VMLoad,
		" "+truncate(e.VMDirectory, 10),
		truncate(e.VMName, nameWidth))
	if e.VMID == "" {
		// a worker we could not correlate; keep it visible but dim
		return dimStyle.Render(row)
	}
	return row
}

func (m Model) helpLine() string {
	switch {
	case m.width >= widthLarge:
		return "q:quit | c/m/t/p:sort metric | d/n/i:sort VM dir/name/id | same key flips direction"
	case m.width >= widthMedium:
		return "q:quit | c/m/t/p/d/n/i:sort | repeat to flip"
	default:
		return "q:quit | c/m/t/p/d/n/i:sort"
	}
}
