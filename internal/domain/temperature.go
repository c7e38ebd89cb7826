package domain

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// yearColumnRe matches wide-format year columns: one non-numeric marker
// character followed by a 4-digit year, e.g. "X2015" -> 2015.
var yearColumnRe = regexp.MustCompile(`^[^0-9]([0-9]{4})$`)

// countryCodes maps the temperature file's 3-letter codes to the 2-letter
// codes used by the occurrence exports. Codes outside this table have no
// occurrences in the study area and are excluded from aggregation.
var countryCodes = map[string]string{
	"CAN": "CA",
	"MEX": "MX",
	"USA": "US",
}

// CodeColumn is the temperature file's country-code column name.
const CodeColumn = "Code"

// TemperatureObservation is one long-form reading after reshaping the wide
// temperature table.
type TemperatureObservation struct {
	CountryCode string
	Year        int
	Celsius     float64
}

// TemperatureKey identifies a temperature aggregation group.
type TemperatureKey struct {
	Year        int
	CountryCode string
}

// TemperatureStats counts cells handled while reshaping the wide table.
type TemperatureStats struct {
	Rows            int
	Kept            int
	MissingReading  int
	OutOfRange      int
	UnmappedCountry int
}

// MapCountryCode translates a 3-letter country code to its 2-letter form.
// The second return is false for codes outside the fixed lookup.
func MapCountryCode(code3 string) (string, bool) {
	code, ok := countryCodes[strings.TrimSpace(code3)]
	return code, ok
}

// ParseYearColumn extracts the year from a wide-format column name such as
// "X2015". Returns false for columns that are not year columns (e.g. "Code").
func ParseYearColumn(name string) (int, bool) {
	m := yearColumnRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// ReshapeTemperature converts the wide per-year table into long-form
// observations. Year columns outside the study window, empty or NaN cells,
// and rows whose country code is not in the fixed lookup are all excluded;
// exclusions are counted in the returned stats rather than failing the run.
// An input without a Code column or without any year column is an error.
func ReshapeTemperature(header []string, rows [][]string, years YearRange) ([]TemperatureObservation, TemperatureStats, error) {
	var stats TemperatureStats

	codeIdx := -1
	yearCols := make(map[int]int) // column index -> year
	for i, name := range header {
		if name == CodeColumn {
			codeIdx = i
			continue
		}
		if year, ok := ParseYearColumn(name); ok {
			yearCols[i] = year
		}
	}
	if codeIdx < 0 {
		return nil, stats, fmt.Errorf("temperature table has no %q column", CodeColumn)
	}
	if len(yearCols) == 0 {
		return nil, stats, fmt.Errorf("temperature table has no year columns")
	}

	obs := make([]TemperatureObservation, 0, len(rows)*len(yearCols))
	for _, row := range rows {
		stats.Rows++
		code, ok := MapCountryCode(row[codeIdx])
		if !ok {
			stats.UnmappedCountry++
			continue
		}
		for i, year := range yearCols {
			if !years.Contains(year) {
				stats.OutOfRange++
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" || strings.EqualFold(cell, "NA") {
				stats.MissingReading++
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(v) {
				stats.MissingReading++
				continue
			}
			stats.Kept++
			obs = append(obs, TemperatureObservation{CountryCode: code, Year: year, Celsius: v})
		}
	}

	sort.Slice(obs, func(i, j int) bool {
		if obs[i].CountryCode != obs[j].CountryCode {
			return obs[i].CountryCode < obs[j].CountryCode
		}
		return obs[i].Year < obs[j].Year
	})
	return obs, stats, nil
}

// AggregateTemperature groups observations by (Year, CountryCode) and
// computes the arithmetic mean per group. Missing readings never reach this
// point (ReshapeTemperature drops them), so a key is present in the result
// iff its group had at least one reading; absent keys surface as nil
// temperatures after the join.
func AggregateTemperature(obs []TemperatureObservation) map[TemperatureKey]float64 {
	sums := make(map[TemperatureKey]float64)
	counts := make(map[TemperatureKey]int)
	for _, o := range obs {
		key := TemperatureKey{Year: o.Year, CountryCode: o.CountryCode}
		sums[key] += o.Celsius
		counts[key]++
	}

	means := make(map[TemperatureKey]float64, len(sums))
	for key, sum := range sums {
		means[key] = sum / float64(counts[key])
	}
	return means
}
