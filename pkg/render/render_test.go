package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cctns/copilot/pkg/conversation"
)

func TestChart(t *testing.T) {
	series := []conversation.SeriesPoint{
		{Label: "Theft", Value: 8},
		{Label: "Assault", Value: 4},
		{Label: "Other", Value: 3},
	}

	out := Chart(series, 60)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Theft")
	assert.Contains(t, lines[0], "8")
	assert.Contains(t, lines[1], "Assault")
	assert.Contains(t, lines[2], "Other")

	// The largest value gets the longest bar.
	assert.Greater(t,
		strings.Count(lines[0], barRune),
		strings.Count(lines[2], barRune))
}

func TestChart_Empty(t *testing.T) {
	assert.Contains(t, Chart(nil, 60), "No chart data")
}

func TestChart_ZeroValues(t *testing.T) {
	out := Chart([]conversation.SeriesPoint{{Label: "None", Value: 0}}, 60)
	assert.Contains(t, out, "None")
	assert.NotContains(t, out, barRune)
}

func TestTable(t *testing.T) {
	columns := []string{"fir_number", "status"}
	rows := []map[string]string{
		{"fir_number": "FIR-001", "status": "Open"},
		{"fir_number": "FIR-002", "status": "Closed"},
	}

	out := Table(columns, rows)
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "fir_number")
	assert.Contains(t, lines[0], "status")
	assert.Contains(t, out, "FIR-001")
	assert.Contains(t, out, "Closed")
	// header + separator + 2 rows
	assert.Len(t, lines, 4)
}

func TestTable_NoRows(t *testing.T) {
	out := Table([]string{"a"}, nil)
	assert.Contains(t, out, "(no rows)")
}

func TestTable_NoColumns(t *testing.T) {
	assert.Contains(t, Table(nil, nil), "No table data")
}

func TestSummary(t *testing.T) {
	assert.Contains(t, Summary("The query returned 15 rows.", 60), "15 rows")
	assert.Contains(t, Summary("", 60), "No summary available")
	assert.Contains(t, Summary("   ", 60), "No summary available")
}

func TestQuery(t *testing.T) {
	out := Query("SELECT * FROM firs")
	assert.Contains(t, out, "SELECT * FROM firs")
	assert.Contains(t, Query(""), "No query available")
}
