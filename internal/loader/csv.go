// Package loader reads the comma-delimited input tables into memory. Loading
// is all-or-nothing: a missing file or a row that does not parse aborts the
// run with no partial table.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/bombuslab/occurrence-etl/internal/domain"
)

// Table is a raw delimited table: the header row verbatim from the file and
// the remaining rows, all rectangular.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the named header column.
func (t *Table) Column(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return 0, false
}

// ReadTable loads a CSV file. The first row becomes the header, taken
// verbatim as field names. csv.Reader's field-count check makes a ragged row
// a fatal parse error.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse table %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table %s has no header row", path)
	}

	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// occurrenceColumns are the columns an occurrence export must carry.
var occurrenceColumns = []string{"dateIdentified", "occurrenceStatus", "stateProvince", "countryCode"}

// ReadOccurrences loads a species or plant export into occurrence records.
// A missing required column is a fatal load error.
func ReadOccurrences(path string) ([]domain.OccurrenceRecord, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(occurrenceColumns))
	for _, name := range occurrenceColumns {
		i, ok := table.Column(name)
		if !ok {
			return nil, fmt.Errorf("table %s is missing column %q", path, name)
		}
		idx[name] = i
	}

	records := make([]domain.OccurrenceRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		records = append(records, domain.OccurrenceRecord{
			DateIdentified:   row[idx["dateIdentified"]],
			OccurrenceStatus: row[idx["occurrenceStatus"]],
			StateProvince:    row[idx["stateProvince"]],
			CountryCode:      row[idx["countryCode"]],
		})
	}
	return records, nil
}
