// Command validate performs end-to-end integrity checks on panel outputs:
// it rebuilds both panels from the source CSVs with the actual domain
// package, then verifies the written panel files against them — row counts,
// key uniqueness, year window, the presence-sum invariant, and missing
// temperature handling.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -species testdata/species.csv \
//	  -plants testdata/plants.csv \
//	  -temperature testdata/temperature.csv \
//	  -panel-dir out
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bombuslab/occurrence-etl/internal/domain"
	"github.com/bombuslab/occurrence-etl/internal/loader"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	species := flag.String("species", "", "path to the species occurrence CSV")
	plants := flag.String("plants", "", "path to the forage-plant occurrence CSV")
	temperature := flag.String("temperature", "", "path to the wide-format temperature CSV")
	panelDir := flag.String("panel-dir", "", "directory containing the written panel CSVs")
	flag.Parse()

	if *species == "" || *plants == "" || *temperature == "" || *panelDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*species, *plants, *temperature, *panelDir); code != 0 {
		os.Exit(code)
	}
}

func run(speciesPath, plantsPath, temperaturePath, panelDir string) int {
	years := domain.DefaultYearRange

	table, err := loader.ReadTable(temperaturePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	obs, _, err := domain.ReshapeTemperature(table.Header, table.Rows, years)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	aggregates := domain.AggregateTemperature(obs)

	exitCode := 0
	sources := []struct {
		name      string
		input     string
		panelFile string
		repair    bool
	}{
		{"species", speciesPath, "species_panel.csv", false},
		{"plant", plantsPath, "plant_panel.csv", true},
	}
	for _, src := range sources {
		p := &phase{name: src.name}
		validateSource(p, src.input, filepath.Join(panelDir, src.panelFile), aggregates, years, src.repair)
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		exitCode = 1
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  %s\n", e)
		}
	}
	return exitCode
}

func validateSource(p *phase, inputPath, panelPath string, aggregates map[domain.TemperatureKey]float64, years domain.YearRange, repair bool) {
	records, err := loader.ReadOccurrences(inputPath)
	if err != nil {
		p.errorf("load input: %v", err)
		return
	}
	cleaned, _ := domain.CleanOccurrences(records, years)
	expected := domain.BuildCountPanel(domain.JoinTemperature(cleaned, aggregates))
	if repair {
		expected, _ = domain.RepairRegionNames(expected, domain.DefaultRegionCorrections())
	}

	written, err := readPanel(panelPath)
	if err != nil {
		p.errorf("load panel: %v", err)
		return
	}

	if len(written) != len(expected) {
		p.errorf("panel has %d rows, rebuild has %d", len(written), len(expected))
	}

	want := make(map[domain.PanelKey]domain.PanelRow, len(expected))
	for _, row := range expected {
		want[domain.PanelKey{Region: row.Region, Year: row.Year}] = row
	}

	seen := make(map[domain.PanelKey]bool, len(written))
	for _, row := range written {
		key := domain.PanelKey{Region: row.Region, Year: row.Year}
		if seen[key] {
			p.errorf("duplicate panel key %v", key)
			continue
		}
		seen[key] = true

		if !years.Contains(row.Year) {
			p.errorf("panel year %d outside [%d, %d]", row.Year, years.Min, years.Max)
		}
		exp, ok := want[key]
		if !ok {
			p.errorf("panel key %v not present in rebuild", key)
			continue
		}
		if row.Count != exp.Count {
			p.errorf("key %v: count %d, rebuild sums presence to %d", key, row.Count, exp.Count)
		}
		if !sameTemperature(row.Temperature, exp.Temperature) {
			p.errorf("key %v: temperature mismatch", key)
		}
	}
}

func readPanel(path string) ([]domain.PanelRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("panel %s has no header", path)
	}

	rows := make([]domain.PanelRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		year, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("panel %s: bad year %q", path, rec[1])
		}
		count, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("panel %s: bad count %q", path, rec[2])
		}
		row := domain.PanelRow{Region: rec[0], Year: year, Count: count}
		if rec[3] != "" {
			v, err := strconv.ParseFloat(rec[3], 64)
			if err != nil {
				return nil, fmt.Errorf("panel %s: bad temperature %q", path, rec[3])
			}
			row.Temperature = &v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func sameTemperature(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return math.Abs(*a-*b) < 1e-9
}
