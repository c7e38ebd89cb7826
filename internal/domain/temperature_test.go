package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYearColumn(t *testing.T) {
	tests := []struct {
		name string
		col  string
		year int
		ok   bool
	}{
		{"x marker", "X2015", 2015, true},
		{"other marker", "Y2020", 2020, true},
		{"no marker", "2015", 0, false},
		{"code column", "Code", 0, false},
		{"too few digits", "X215", 0, false},
		{"too many digits", "X20155", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, ok := ParseYearColumn(tt.col)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.year, year)
		})
	}
}

func TestMapCountryCode(t *testing.T) {
	for code3, want := range map[string]string{"USA": "US", "CAN": "CA", "MEX": "MX"} {
		got, ok := MapCountryCode(code3)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := MapCountryCode("GTM")
	assert.False(t, ok)
}

func TestReshapeTemperature(t *testing.T) {
	years := DefaultYearRange
	header := []string{"Country", "Code", "X2015", "X2016"}

	t.Run("wide rows reshape to long observations", func(t *testing.T) {
		rows := [][]string{
			{"United States", "USA", "10.0", "11.0"},
			{"Canada", "CAN", "5.0", ""},
		}
		obs, stats, err := ReshapeTemperature(header, rows, years)
		require.NoError(t, err)

		assert.Equal(t, []TemperatureObservation{
			{CountryCode: "CA", Year: 2015, Celsius: 5.0},
			{CountryCode: "US", Year: 2015, Celsius: 10.0},
			{CountryCode: "US", Year: 2016, Celsius: 11.0},
		}, obs)
		assert.Equal(t, 1, stats.MissingReading)
		assert.Equal(t, 3, stats.Kept)
	})

	t.Run("unmapped country code is excluded", func(t *testing.T) {
		rows := [][]string{
			{"Guatemala", "GTM", "24.0", "24.5"},
			{"Mexico", "MEX", "21.0", "21.5"},
		}
		obs, stats, err := ReshapeTemperature(header, rows, years)
		require.NoError(t, err)

		require.Len(t, obs, 2)
		for _, o := range obs {
			assert.Equal(t, "MX", o.CountryCode)
		}
		assert.Equal(t, 1, stats.UnmappedCountry)
	})

	t.Run("year columns outside the window are excluded", func(t *testing.T) {
		obs, stats, err := ReshapeTemperature(
			[]string{"Code", "X2012", "X2013", "X2024"},
			[][]string{{"USA", "9.0", "10.0", "12.0"}},
			years,
		)
		require.NoError(t, err)

		require.Len(t, obs, 1)
		assert.Equal(t, 2013, obs[0].Year)
		assert.Equal(t, 2, stats.OutOfRange)
	})

	t.Run("NA and non-numeric cells count as missing", func(t *testing.T) {
		obs, stats, err := ReshapeTemperature(header, [][]string{{"United States", "USA", "NA", "n/a"}}, years)
		require.NoError(t, err)

		assert.Empty(t, obs)
		assert.Equal(t, 2, stats.MissingReading)
	})

	t.Run("missing Code column is an error", func(t *testing.T) {
		_, _, err := ReshapeTemperature([]string{"Country", "X2015"}, nil, years)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Code")
	})

	t.Run("no year columns is an error", func(t *testing.T) {
		_, _, err := ReshapeTemperature([]string{"Country", "Code"}, nil, years)
		require.Error(t, err)
	})
}

func TestAggregateTemperature(t *testing.T) {
	t.Run("worked example", func(t *testing.T) {
		obs, _, err := ReshapeTemperature(
			[]string{"Code", "X2015"},
			[][]string{{"USA", "10.0"}, {"CAN", "5.0"}},
			DefaultYearRange,
		)
		require.NoError(t, err)

		means := AggregateTemperature(obs)
		assert.Equal(t, map[TemperatureKey]float64{
			{Year: 2015, CountryCode: "US"}: 10.0,
			{Year: 2015, CountryCode: "CA"}: 5.0,
		}, means)
	})

	t.Run("mean over multiple readings per key", func(t *testing.T) {
		means := AggregateTemperature([]TemperatureObservation{
			{CountryCode: "US", Year: 2015, Celsius: 10.0},
			{CountryCode: "US", Year: 2015, Celsius: 14.0},
		})
		assert.InDelta(t, 12.0, means[TemperatureKey{Year: 2015, CountryCode: "US"}], 1e-9)
	})

	t.Run("all observations stay inside window and lookup", func(t *testing.T) {
		obs, _, err := ReshapeTemperature(
			[]string{"Code", "X2010", "X2013", "X2023", "X2030"},
			[][]string{
				{"USA", "1", "2", "3", "4"},
				{"CAN", "1", "2", "3", "4"},
				{"BRA", "1", "2", "3", "4"},
			},
			DefaultYearRange,
		)
		require.NoError(t, err)

		for key := range AggregateTemperature(obs) {
			assert.True(t, DefaultYearRange.Contains(key.Year))
			assert.Contains(t, []string{"US", "CA", "MX"}, key.CountryCode)
		}
	})
}
