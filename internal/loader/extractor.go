package loader

import (
	"context"

	"github.com/bombuslab/occurrence-etl/internal/domain"
)

// FileExtractor reads input tables from the local filesystem. It implements
// pipeline.Extractor.
type FileExtractor struct{}

// Occurrences loads a species or plant export.
func (FileExtractor) Occurrences(_ context.Context, path string) ([]domain.OccurrenceRecord, error) {
	return ReadOccurrences(path)
}

// Table loads the wide temperature table as raw header and rows.
func (FileExtractor) Table(_ context.Context, path string) ([]string, [][]string, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, nil, err
	}
	return table.Header, table.Rows, nil
}
