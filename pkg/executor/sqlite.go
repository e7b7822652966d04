// Package executor runs confirmed SQL queries against the CCTNS SQLite
// database and shapes the results for display.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/cctns/copilot/pkg/conversation"
	"github.com/cctns/copilot/pkg/logging"
	"github.com/cctns/copilot/pkg/orchestration"
)

// ErrNotReadOnly indicates the query was not a plain SELECT statement.
var ErrNotReadOnly = errors.New("executor: only SELECT queries are allowed")

// SQLite implements orchestration.Executor over a SQLite database opened
// read-only.
type SQLite struct {
	db     *sql.DB
	logger *logrus.Entry
}

// Open opens the database at path in read-only mode.
func Open(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &SQLite{db: db, logger: logging.New("executor")}, nil
}

// NewWithDB wraps an existing database handle. Used by tests with an
// in-memory database.
func NewWithDB(db *sql.DB) *SQLite {
	return &SQLite{db: db, logger: logging.New("executor")}
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Execute runs a confirmed SELECT query and shapes the results.
func (s *SQLite) Execute(ctx context.Context, query string) (*orchestration.ExecResult, error) {
	if err := validateReadOnly(query); err != nil {
		return nil, &orchestration.ExecutionError{Err: err}
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.WithError(err).Warn("Query failed")
		return nil, &orchestration.ExecutionError{Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &orchestration.ExecutionError{Err: err}
	}

	var tableRows []map[string]string
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &orchestration.ExecutionError{Err: err}
		}

		row := make(map[string]string, len(columns))
		for i, col := range columns {
			row[col] = formatValue(values[i])
		}
		tableRows = append(tableRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &orchestration.ExecutionError{Err: err}
	}

	result := &orchestration.ExecResult{
		Columns:     columns,
		TableRows:   tableRows,
		ChartSeries: deriveChart(columns, tableRows),
		SummaryText: buildSummary(columns, tableRows),
	}

	s.logger.WithFields(logrus.Fields{
		"rows":    len(tableRows),
		"columns": len(columns),
	}).Debug("Query executed")

	return result, nil
}

// validateReadOnly rejects anything other than a single SELECT statement.
func validateReadOnly(query string) error {
	trimmed := strings.TrimSpace(query)
	trimmed = strings.TrimSuffix(trimmed, ";")
	if trimmed == "" {
		return ErrNotReadOnly
	}
	// A second statement after the terminating semicolon would slip past the
	// prefix check.
	if strings.Contains(trimmed, ";") {
		return ErrNotReadOnly
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return ErrNotReadOnly
	}

	for _, kw := range []string{"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE", "ATTACH", "PRAGMA", "VACUUM", "REINDEX"} {
		if containsKeyword(upper, kw) {
			return ErrNotReadOnly
		}
	}
	return nil
}

// containsKeyword reports whether kw appears as a standalone word.
func containsKeyword(upper, kw string) bool {
	idx := 0
	for {
		i := strings.Index(upper[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || !isWordChar(upper[start-1])
		afterOK := end == len(upper) || !isWordChar(upper[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// deriveChart builds a bar chart series when the result is shaped as
// (label, numeric) pairs: exactly two columns with every second value
// numeric.
func deriveChart(columns []string, tableRows []map[string]string) []conversation.SeriesPoint {
	if len(columns) != 2 || len(tableRows) == 0 {
		return nil
	}

	labelCol, valueCol := columns[0], columns[1]
	series := make([]conversation.SeriesPoint, 0, len(tableRows))
	for _, row := range tableRows {
		value, err := strconv.ParseFloat(row[valueCol], 64)
		if err != nil {
			return nil
		}
		series = append(series, conversation.SeriesPoint{
			Label: row[labelCol],
			Value: value,
		})
	}
	return series
}

// buildSummary produces a short text summary of the result set.
func buildSummary(columns []string, tableRows []map[string]string) string {
	switch len(tableRows) {
	case 0:
		return "The query returned no rows."
	case 1:
		// A single row with a single column is usually an aggregate answer.
		if len(columns) == 1 {
			return fmt.Sprintf("Result: %s = %s.", columns[0], tableRows[0][columns[0]])
		}
		return "The query returned 1 row."
	}

	summary := fmt.Sprintf("The query returned %d rows.", len(tableRows))
	if series := deriveChart(columns, tableRows); series != nil {
		top := series[0]
		var total float64
		for _, p := range series {
			total += p.Value
			if p.Value > top.Value {
				top = p
			}
		}
		summary += fmt.Sprintf(" Highest is %s (%s of %s total %s).",
			top.Label, formatNumber(top.Value), formatNumber(total), columns[1])
	}
	return summary
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return formatNumber(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
