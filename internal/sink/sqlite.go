package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/bombuslab/occurrence-etl/internal/domain"
	"github.com/bombuslab/occurrence-etl/internal/pipeline"
)

// schema mirrors the CSV panel contract, with NULL for a missing temperature.
const schema = `
CREATE TABLE IF NOT EXISTS species_panel (
	region      TEXT NOT NULL,
	year        INTEGER NOT NULL,
	count       INTEGER NOT NULL,
	temperature REAL,
	PRIMARY KEY (region, year)
);
CREATE TABLE IF NOT EXISTS plant_panel (
	region      TEXT NOT NULL,
	year        INTEGER NOT NULL,
	count       INTEGER NOT NULL,
	temperature REAL,
	PRIMARY KEY (region, year)
);
CREATE TABLE IF NOT EXISTS runs (
	run_id   TEXT PRIMARY KEY,
	built_at TEXT NOT NULL
);`

// SQLiteSink stores both panels in a SQLite database file. Each run replaces
// the previous panel contents.
type SQLiteSink struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteSink opens (creating if needed) the database at path and ensures
// the panel schema exists.
func NewSQLiteSink(path string, logger *slog.Logger) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite sink: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteSink{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// WritePanels replaces both panel tables and records the run, all in one
// transaction so a failed run leaves the previous panels intact.
func (s *SQLiteSink) WritePanels(ctx context.Context, result *pipeline.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sqlite transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replacePanel(ctx, tx, "species_panel", result.Species); err != nil {
		return err
	}
	if err := replacePanel(ctx, tx, "plant_panel", result.Plant); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, built_at) VALUES (?, ?)`,
		result.RunID, result.BuiltAt.UTC().Format("2006-01-02T15:04:05Z"),
	); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sqlite transaction: %w", err)
	}
	s.logger.Info("panels stored",
		"species_rows", len(result.Species),
		"plant_rows", len(result.Plant),
	)
	return nil
}

func replacePanel(ctx context.Context, tx *sql.Tx, table string, panel []domain.PanelRow) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+table+" (region, year, count, temperature) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range panel {
		temp := sql.NullFloat64{}
		if row.Temperature != nil {
			temp = sql.NullFloat64{Float64: *row.Temperature, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, row.Region, row.Year, row.Count, temp); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}
