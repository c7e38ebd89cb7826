// Package sink delivers finished count panels to their consumers: CSV files
// for the external regression collaborator and an optional SQLite database
// for ad-hoc analysis tools.
package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bombuslab/occurrence-etl/internal/domain"
	"github.com/bombuslab/occurrence-etl/internal/pipeline"
)

// Panel output file names inside the output directory.
const (
	SpeciesPanelFile = "species_panel.csv"
	PlantPanelFile   = "plant_panel.csv"
)

// panelHeader is the column contract with the regression consumer. A missing
// temperature is written as an empty field, never as zero.
var panelHeader = []string{"region", "year", "count", "temperature"}

// CSVSink writes both panels as CSV files into a directory.
type CSVSink struct {
	dir    string
	logger *slog.Logger
}

// NewCSVSink creates a CSVSink writing into dir, creating it if needed.
func NewCSVSink(dir string, logger *slog.Logger) *CSVSink {
	return &CSVSink{dir: dir, logger: logger}
}

// WritePanels writes species_panel.csv and plant_panel.csv.
func (s *CSVSink) WritePanels(_ context.Context, result *pipeline.Result) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	outputs := []struct {
		file  string
		panel []domain.PanelRow
	}{
		{SpeciesPanelFile, result.Species},
		{PlantPanelFile, result.Plant},
	}
	for _, out := range outputs {
		path := filepath.Join(s.dir, out.file)
		if err := writePanelFile(path, out.panel); err != nil {
			return err
		}
		s.logger.Info("panel written", "path", path, "rows", len(out.panel))
	}
	return nil
}

// Split output file names inside the output directory.
const (
	SpeciesTrainFile = "species_panel_train.csv"
	SpeciesTestFile  = "species_panel_test.csv"
)

// WriteSplit writes the train/test partition of the species panel used by
// the regression consumer's cross-validation fits.
func (s *CSVSink) WriteSplit(_ context.Context, split domain.PanelSplit) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	outputs := []struct {
		file  string
		panel []domain.PanelRow
	}{
		{SpeciesTrainFile, split.Train},
		{SpeciesTestFile, split.Test},
	}
	for _, out := range outputs {
		path := filepath.Join(s.dir, out.file)
		if err := writePanelFile(path, out.panel); err != nil {
			return err
		}
		s.logger.Info("split written", "path", path, "rows", len(out.panel))
	}
	return nil
}

func writePanelFile(path string, panel []domain.PanelRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create panel file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(panelHeader); err != nil {
		return fmt.Errorf("write panel header: %w", err)
	}
	for _, row := range panel {
		temp := ""
		if row.Temperature != nil {
			temp = strconv.FormatFloat(*row.Temperature, 'f', -1, 64)
		}
		record := []string{
			row.Region,
			strconv.Itoa(row.Year),
			strconv.Itoa(row.Count),
			temp,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write panel row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush panel file %s: %w", path, err)
	}
	return f.Close()
}
