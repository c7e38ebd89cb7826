package sink

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteSink(t *testing.T) (*SQLiteSink, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panels.db")
	s, err := NewSQLiteSink(path, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSQLiteSink_WritePanels(t *testing.T) {
	s, path := newTestSQLiteSink(t)

	result := testResult()
	result.BuiltAt = time.Date(2024, 4, 26, 6, 0, 0, 0, time.UTC)
	require.NoError(t, s.WritePanels(context.Background(), result))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT count FROM species_panel WHERE region = 'Ontario' AND year = 2015").Scan(&count))
	assert.Equal(t, 3, count)

	// Missing temperature round-trips as NULL, not zero.
	var temp sql.NullFloat64
	require.NoError(t, db.QueryRow("SELECT temperature FROM species_panel WHERE region = 'Texas' AND year = 2016").Scan(&temp))
	assert.False(t, temp.Valid)

	var plantRows int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM plant_panel").Scan(&plantRows))
	assert.Equal(t, 1, plantRows)

	var builtAt string
	require.NoError(t, db.QueryRow("SELECT built_at FROM runs WHERE run_id = 'run-1'").Scan(&builtAt))
	assert.Equal(t, "2024-04-26T06:00:00Z", builtAt)
}

func TestSQLiteSink_RerunReplacesPanels(t *testing.T) {
	s, path := newTestSQLiteSink(t)

	first := testResult()
	require.NoError(t, s.WritePanels(context.Background(), first))

	second := testResult()
	second.RunID = "run-2"
	second.Species = second.Species[:1]
	require.NoError(t, s.WritePanels(context.Background(), second))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var rows int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM species_panel").Scan(&rows))
	assert.Equal(t, 1, rows)

	var runs int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs))
	assert.Equal(t, 2, runs)
}
