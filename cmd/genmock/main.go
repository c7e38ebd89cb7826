// Command genmock generates synthetic species, plant, and temperature CSV
// fixtures with the column conventions the ETL expects. Output is
// deterministic for a fixed seed, so fixtures can be regenerated without
// churning test data.
//
// Usage:
//
//	go run ./cmd/genmock -out testdata -rows 200 -seed 7
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bombuslab/occurrence-etl/internal/domain"
)

var regionsByCountry = map[string][]string{
	"US": {"California", "Texas", "Oregon", "Minnesota"},
	"CA": {"Ontario", "Québec", "British Columbia"},
	"MX": {"Michoacán", "Nuevo León", "Jalisco"},
}

var countries = []string{"US", "CA", "MX"}

func main() {
	out := flag.String("out", "testdata", "output directory for the fixture CSVs")
	rows := flag.Int("rows", 200, "occurrence rows per biological source")
	seed := flag.Int64("seed", 1, "seed for deterministic fixture content")
	flag.Parse()

	if err := run(*out, *rows, *seed); err != nil {
		log.Fatal(err)
	}
}

func run(dir string, rows int, seed int64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(seed))

	for _, name := range []string{"species.csv", "plants.csv"} {
		if err := writeOccurrences(filepath.Join(dir, name), rows, rng); err != nil {
			return err
		}
	}
	if err := writeTemperature(filepath.Join(dir, "temperature.csv"), rng); err != nil {
		return err
	}
	fmt.Printf("fixtures written to %s\n", dir)
	return nil
}

func writeOccurrences(path string, rows int, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"dateIdentified", "occurrenceStatus", "stateProvince", "countryCode", "year"}); err != nil {
		return err
	}

	years := domain.DefaultYearRange
	for i := 0; i < rows; i++ {
		year := years.Min + rng.Intn(years.Max-years.Min+1)
		country := countries[rng.Intn(len(countries))]
		regions := regionsByCountry[country]
		region := regions[rng.Intn(len(regions))]

		status := domain.PresentToken
		if rng.Float64() < 0.1 {
			status = "ABSENT"
		}
		// Sprinkle in the dirty rows the cleaner must drop.
		date := fmt.Sprintf("%d-%02d-%02dT00:00:00", year, 1+rng.Intn(12), 1+rng.Intn(28))
		switch {
		case rng.Float64() < 0.02:
			date = "not-a-date"
		case rng.Float64() < 0.02:
			region = ""
		}

		if err := w.Write([]string{date, status, region, country, strconv.Itoa(year)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeTemperature(path string, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	years := domain.DefaultYearRange
	header := []string{"Country", domain.CodeColumn}
	for y := years.Min; y <= years.Max; y++ {
		header = append(header, "X"+strconv.Itoa(y))
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}

	rows := []struct {
		country string
		code3   string
		base    float64
	}{
		{"United States", "USA", 12.0},
		{"Canada", "CAN", 4.0},
		{"Mexico", "MEX", 21.0},
		{"Guatemala", "GTM", 24.0}, // outside the fixed lookup, must be excluded
	}
	for _, r := range rows {
		row := []string{r.country, r.code3}
		for y := years.Min; y <= years.Max; y++ {
			if rng.Float64() < 0.05 {
				row = append(row, "") // missing reading
				continue
			}
			row = append(row, strconv.FormatFloat(r.base+rng.Float64()*2-1, 'f', 2, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
