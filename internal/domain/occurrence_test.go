package domain

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObservationYear(t *testing.T) {
	tests := []struct {
		name  string
		value string
		year  int
		ok    bool
	}{
		{"bare date-time", "2018-05-01T00:00:00", 2018, true},
		{"rfc3339", "2015-07-12T09:30:00Z", 2015, true},
		{"date only", "2020-03-14", 2020, true},
		{"whitespace", "  2019-01-01  ", 2019, true},
		{"empty", "", 0, false},
		{"garbage", "not-a-date", 0, false},
		{"year only", "2018", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, ok := ParseObservationYear(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.year, year)
		})
	}
}

func TestCleanOccurrences(t *testing.T) {
	years := DefaultYearRange

	t.Run("present record within window is kept", func(t *testing.T) {
		cleaned, stats := CleanOccurrences([]OccurrenceRecord{{
			DateIdentified:   "2018-05-01T00:00:00",
			OccurrenceStatus: "PRESENT",
			StateProvince:    "Ontario",
			CountryCode:      "CA",
		}}, years)

		require.Len(t, cleaned, 1)
		assert.Equal(t, CleanedOccurrence{Region: "Ontario", CountryCode: "CA", Year: 2018, Presence: 1}, cleaned[0])
		assert.Equal(t, 1, stats.Kept)
	})

	t.Run("non-present status keeps row with zero presence", func(t *testing.T) {
		cleaned, _ := CleanOccurrences([]OccurrenceRecord{{
			DateIdentified:   "2018-05-01T00:00:00",
			OccurrenceStatus: "ABSENT",
			StateProvince:    "Ontario",
			CountryCode:      "CA",
		}}, years)

		require.Len(t, cleaned, 1)
		assert.Equal(t, 0, cleaned[0].Presence)
	})

	t.Run("lower-case present is not the token", func(t *testing.T) {
		cleaned, _ := CleanOccurrences([]OccurrenceRecord{{
			DateIdentified:   "2018-05-01T00:00:00",
			OccurrenceStatus: "present",
			StateProvince:    "Ontario",
			CountryCode:      "CA",
		}}, years)

		require.Len(t, cleaned, 1)
		assert.Equal(t, 0, cleaned[0].Presence)
	})

	t.Run("empty region is dropped regardless of year and presence", func(t *testing.T) {
		cleaned, stats := CleanOccurrences([]OccurrenceRecord{{
			DateIdentified:   "2018-05-01T00:00:00",
			OccurrenceStatus: "PRESENT",
			StateProvince:    "",
			CountryCode:      "US",
		}}, years)

		assert.Empty(t, cleaned)
		assert.Equal(t, 1, stats.EmptyRegion)
	})

	t.Run("out-of-window years are dropped", func(t *testing.T) {
		cleaned, stats := CleanOccurrences([]OccurrenceRecord{
			{DateIdentified: "2012-12-31T23:59:59", OccurrenceStatus: "PRESENT", StateProvince: "Texas", CountryCode: "US"},
			{DateIdentified: "2024-01-01T00:00:00", OccurrenceStatus: "PRESENT", StateProvince: "Texas", CountryCode: "US"},
			{DateIdentified: "2013-01-01T00:00:00", OccurrenceStatus: "PRESENT", StateProvince: "Texas", CountryCode: "US"},
			{DateIdentified: "2023-12-31T00:00:00", OccurrenceStatus: "PRESENT", StateProvince: "Texas", CountryCode: "US"},
		}, years)

		assert.Len(t, cleaned, 2)
		assert.Equal(t, 2, stats.OutOfRange)
	})

	t.Run("unparseable timestamp is dropped, not fatal", func(t *testing.T) {
		cleaned, stats := CleanOccurrences([]OccurrenceRecord{
			{DateIdentified: "garbage", OccurrenceStatus: "PRESENT", StateProvince: "Texas", CountryCode: "US"},
			{DateIdentified: "2018-05-01T00:00:00", OccurrenceStatus: "PRESENT", StateProvince: "Texas", CountryCode: "US"},
		}, years)

		require.Len(t, cleaned, 1)
		assert.Equal(t, 1, stats.BadTimestamp)
		assert.Equal(t, 2, stats.Input)
	})

	t.Run("cleaning already-cleaned data is a no-op", func(t *testing.T) {
		records := []OccurrenceRecord{
			{DateIdentified: "2018-05-01T00:00:00", OccurrenceStatus: "PRESENT", StateProvince: "Ontario", CountryCode: "CA"},
			{DateIdentified: "2015-08-20T12:00:00", OccurrenceStatus: "ABSENT", StateProvince: "Texas", CountryCode: "US"},
		}
		first, _ := CleanOccurrences(records, years)

		// Rebuild records from the cleaned rows and clean again.
		rebuilt := make([]OccurrenceRecord, len(first))
		for i, c := range first {
			status := "ABSENT"
			if c.Presence == 1 {
				status = PresentToken
			}
			rebuilt[i] = OccurrenceRecord{
				DateIdentified:   strconv.Itoa(c.Year) + "-01-01T00:00:00",
				OccurrenceStatus: status,
				StateProvince:    c.Region,
				CountryCode:      c.CountryCode,
			}
		}
		second, stats := CleanOccurrences(rebuilt, years)

		assert.Equal(t, first, second)
		assert.Zero(t, stats.BadTimestamp)
		assert.Zero(t, stats.OutOfRange)
		assert.Zero(t, stats.EmptyRegion)
	})
}

func TestYearRangeContains(t *testing.T) {
	r := YearRange{Min: 2013, Max: 2023}

	assert.True(t, r.Contains(2013))
	assert.True(t, r.Contains(2023))
	assert.False(t, r.Contains(2012))
	assert.False(t, r.Contains(2024))
}
