// Package render formats query result artifacts for terminal display.
// All functions are pure string builders; the chat TUI composes them into
// the result card.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cctns/copilot/pkg/conversation"
)

var (
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	queryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

const barRune = "█"

// Chart renders a horizontal bar chart for the series, scaled to width.
func Chart(series []conversation.SeriesPoint, width int) string {
	if len(series) == 0 {
		return dimStyle.Render("No chart data.")
	}
	if width < 20 {
		width = 20
	}

	maxLabel := 0
	maxValue := 0.0
	for _, p := range series {
		if len(p.Label) > maxLabel {
			maxLabel = len(p.Label)
		}
		if p.Value > maxValue {
			maxValue = p.Value
		}
	}

	// label + space + bar + space + value
	barWidth := width - maxLabel - 12
	if barWidth < 5 {
		barWidth = 5
	}

	var b strings.Builder
	for i, p := range series {
		if i > 0 {
			b.WriteString("\n")
		}
		length := 0
		if maxValue > 0 {
			length = int(p.Value / maxValue * float64(barWidth))
		}
		if length < 1 && p.Value > 0 {
			length = 1
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", maxLabel, p.Label)))
		b.WriteString(" ")
		b.WriteString(barStyle.Render(strings.Repeat(barRune, length)))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render(formatValue(p.Value)))
	}
	return b.String()
}

// Table renders rows as an aligned text table in column order.
func Table(columns []string, rows []map[string]string) string {
	if len(columns) == 0 {
		return dimStyle.Render("No table data.")
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	for _, row := range rows {
		for i, col := range columns {
			if len(row[col]) > widths[i] {
				widths[i] = len(row[col])
			}
		}
	}

	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s", widths[i], col)))
	}
	b.WriteString("\n")
	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(dimStyle.Render(strings.Repeat("─", w)))
	}
	for _, row := range rows {
		b.WriteString("\n")
		for i, col := range columns {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(fmt.Sprintf("%-*s", widths[i], row[col]))
		}
	}
	if len(rows) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("(no rows)"))
	}
	return b.String()
}

// Summary renders the summary text, wrapped to width.
func Summary(text string, width int) string {
	if strings.TrimSpace(text) == "" {
		return dimStyle.Render("No summary available.")
	}
	if width < 20 {
		width = 20
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}

// Query renders the SQL query in a bordered box.
func Query(query string) string {
	if strings.TrimSpace(query) == "" {
		return dimStyle.Render("No query available.")
	}
	return queryBoxStyle.Render(query)
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
