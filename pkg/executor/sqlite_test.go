package executor

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cctns/copilot/pkg/conversation"
	"github.com/cctns/copilot/pkg/orchestration"
)

func openFixture(t *testing.T) *SQLite {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fixture := `
CREATE TABLE districts (district_id INTEGER PRIMARY KEY, district_name TEXT NOT NULL);
CREATE TABLE police_stations (station_id INTEGER PRIMARY KEY, station_name TEXT NOT NULL, district_id INTEGER NOT NULL);
CREATE TABLE crime_types (crime_type_id INTEGER PRIMARY KEY, crime_type_name TEXT NOT NULL);
CREATE TABLE firs (
  fir_id INTEGER PRIMARY KEY,
  fir_number TEXT NOT NULL,
  station_id INTEGER NOT NULL,
  crime_type_id INTEGER NOT NULL,
  incident_date TEXT NOT NULL,
  registered_date TEXT NOT NULL,
  status TEXT NOT NULL
);
INSERT INTO districts VALUES (1, 'Guntur'), (2, 'Krishna');
INSERT INTO police_stations VALUES (1, 'Guntur Town', 1), (2, 'Machilipatnam', 2);
INSERT INTO crime_types VALUES (1, 'Theft'), (2, 'Assault');
INSERT INTO firs VALUES
  (1, 'FIR-001', 1, 1, '2025-01-10', '2025-01-11', 'Open'),
  (2, 'FIR-002', 1, 1, '2025-02-05', '2025-02-05', 'Closed'),
  (3, 'FIR-003', 1, 2, '2025-03-01', '2025-03-02', 'Open'),
  (4, 'FIR-004', 2, 1, '2025-03-15', '2025-03-15', 'Open');
`
	_, err = db.Exec(fixture)
	require.NoError(t, err)

	return NewWithDB(db)
}

func TestExecute_TableAndColumns(t *testing.T) {
	s := openFixture(t)

	result, err := s.Execute(context.Background(),
		`SELECT fir_number, status FROM firs WHERE station_id = 1 ORDER BY fir_number`)
	require.NoError(t, err)

	assert.Equal(t, []string{"fir_number", "status"}, result.Columns)
	require.Len(t, result.TableRows, 3)
	assert.Equal(t, "FIR-001", result.TableRows[0]["fir_number"])
	assert.Equal(t, "Open", result.TableRows[0]["status"])
}

func TestExecute_ChartDerivation(t *testing.T) {
	s := openFixture(t)

	result, err := s.Execute(context.Background(),
		`SELECT ct.crime_type_name AS crime_type, COUNT(*) AS count
		 FROM firs f JOIN crime_types ct ON f.crime_type_id = ct.crime_type_id
		 GROUP BY ct.crime_type_name ORDER BY count DESC`)
	require.NoError(t, err)

	require.Len(t, result.ChartSeries, 2)
	assert.Equal(t, conversation.SeriesPoint{Label: "Theft", Value: 3}, result.ChartSeries[0])
	assert.Equal(t, conversation.SeriesPoint{Label: "Assault", Value: 1}, result.ChartSeries[1])
	assert.Contains(t, result.SummaryText, "2 rows")
	assert.Contains(t, result.SummaryText, "Theft")
}

func TestExecute_NoChartForNonNumericSecondColumn(t *testing.T) {
	s := openFixture(t)

	result, err := s.Execute(context.Background(),
		`SELECT fir_number, status FROM firs`)
	require.NoError(t, err)
	assert.Nil(t, result.ChartSeries)
}

func TestExecute_SingleAggregate(t *testing.T) {
	s := openFixture(t)

	result, err := s.Execute(context.Background(),
		`SELECT COUNT(*) AS total_firs FROM firs`)
	require.NoError(t, err)

	assert.Equal(t, "Result: total_firs = 4.", result.SummaryText)
	require.Len(t, result.TableRows, 1)
	assert.Equal(t, "4", result.TableRows[0]["total_firs"])
}

func TestExecute_EmptyResult(t *testing.T) {
	s := openFixture(t)

	result, err := s.Execute(context.Background(),
		`SELECT fir_number FROM firs WHERE status = 'Missing'`)
	require.NoError(t, err)

	assert.Empty(t, result.TableRows)
	assert.Equal(t, "The query returned no rows.", result.SummaryText)
}

func TestExecute_RejectsNonSelect(t *testing.T) {
	s := openFixture(t)

	queries := []string{
		"DELETE FROM firs",
		"UPDATE firs SET status = 'Closed'",
		"DROP TABLE firs",
		"INSERT INTO firs VALUES (9, 'x', 1, 1, '2025-01-01', '2025-01-01', 'Open')",
		"PRAGMA table_info(firs)",
		"SELECT 1; DELETE FROM firs",
		"",
	}
	for _, q := range queries {
		_, err := s.Execute(context.Background(), q)
		require.Error(t, err, "query: %s", q)

		var execErr *orchestration.ExecutionError
		require.ErrorAs(t, err, &execErr, "query: %s", q)
		assert.ErrorIs(t, execErr.Err, ErrNotReadOnly, "query: %s", q)
	}
}

func TestExecute_AllowsCTE(t *testing.T) {
	s := openFixture(t)

	result, err := s.Execute(context.Background(),
		`WITH open_firs AS (SELECT * FROM firs WHERE status = 'Open')
		 SELECT COUNT(*) AS open_count FROM open_firs`)
	require.NoError(t, err)
	assert.Equal(t, "3", result.TableRows[0]["open_count"])
}

func TestExecute_BadSQL(t *testing.T) {
	s := openFixture(t)

	_, err := s.Execute(context.Background(), "SELECT nope FROM missing_table")
	require.Error(t, err)

	var execErr *orchestration.ExecutionError
	assert.ErrorAs(t, err, &execErr)
}

func TestValidateReadOnly_KeywordBoundaries(t *testing.T) {
	// Column names containing write keywords as substrings are fine.
	assert.NoError(t, validateReadOnly("SELECT updated_at FROM districts"))
	assert.NoError(t, validateReadOnly("SELECT created, dropped FROM districts"))
	assert.Error(t, validateReadOnly("SELECT * FROM firs WHERE 1=1; DROP TABLE firs"))
}
