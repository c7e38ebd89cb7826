package domain

import (
	"strings"
	"time"
)

// PresentToken is the occurrenceStatus value that denotes a confirmed
// observation. Comparison is exact; GBIF exports upper-case the field.
const PresentToken = "PRESENT"

// timestampLayouts are tried in order when parsing dateIdentified. GBIF
// exports mix bare date-times, RFC 3339, and date-only values.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// OccurrenceRecord is one row of a species or plant export, untyped as read
// from disk. Records are never mutated after load; cleaning produces new
// CleanedOccurrence values.
type OccurrenceRecord struct {
	DateIdentified   string
	OccurrenceStatus string
	StateProvince    string
	CountryCode      string
}

// CleanedOccurrence is an occurrence record after cleaning: the derived Year
// and Presence fields are populated, the region is non-empty, and the year
// lies within the study window.
type CleanedOccurrence struct {
	Region      string
	CountryCode string
	Year        int
	Presence    int
}

// YearRange is the inclusive study window applied to both occurrence years
// and temperature columns.
type YearRange struct {
	Min int
	Max int
}

// DefaultYearRange covers the years with usable coverage in all sources.
var DefaultYearRange = YearRange{Min: 2013, Max: 2023}

// Contains reports whether year falls inside the inclusive range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

// CleanStats counts per-reason drops during occurrence cleaning. Reasons are
// mutually exclusive and checked in field order: a row with both a bad
// timestamp and an empty region counts once, as a bad timestamp.
type CleanStats struct {
	Input        int
	BadTimestamp int
	OutOfRange   int
	EmptyRegion  int
	Kept         int
}

// ParseObservationYear extracts the calendar year from a dateIdentified
// value, trying each supported layout in turn.
func ParseObservationYear(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Year(), true
		}
	}
	return 0, false
}

// CleanOccurrence derives Year and Presence for a single record and applies
// the row filters. The second return is false when the row is dropped; the
// reason is recorded in stats.
func CleanOccurrence(rec OccurrenceRecord, years YearRange, stats *CleanStats) (CleanedOccurrence, bool) {
	stats.Input++

	year, ok := ParseObservationYear(rec.DateIdentified)
	if !ok {
		stats.BadTimestamp++
		return CleanedOccurrence{}, false
	}
	if !years.Contains(year) {
		stats.OutOfRange++
		return CleanedOccurrence{}, false
	}
	region := strings.TrimSpace(rec.StateProvince)
	if region == "" {
		stats.EmptyRegion++
		return CleanedOccurrence{}, false
	}

	presence := 0
	if rec.OccurrenceStatus == PresentToken {
		presence = 1
	}

	stats.Kept++
	return CleanedOccurrence{
		Region:      region,
		CountryCode: rec.CountryCode,
		Year:        year,
		Presence:    presence,
	}, true
}

// CleanOccurrences cleans a whole export. Rows with unparseable timestamps,
// out-of-window years, or empty regions are dropped, not fatal; the returned
// stats let the caller surface drop counts as data-quality warnings.
//
// Cleaning is idempotent on its own output: a record rebuilt from a
// CleanedOccurrence cleans to the same value.
func CleanOccurrences(records []OccurrenceRecord, years YearRange) ([]CleanedOccurrence, CleanStats) {
	cleaned := make([]CleanedOccurrence, 0, len(records))
	var stats CleanStats
	for _, rec := range records {
		c, ok := CleanOccurrence(rec, years, &stats)
		if !ok {
			continue
		}
		cleaned = append(cleaned, c)
	}
	return cleaned, stats
}
