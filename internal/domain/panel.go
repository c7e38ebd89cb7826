package domain

import (
	"math/rand"
	"sort"
)

// JoinedOccurrence is a cleaned record carrying the temperature aggregate
// matched on (Year, CountryCode). Temperature is nil when no aggregate
// exists for the key; the record itself is never dropped by the join.
type JoinedOccurrence struct {
	CleanedOccurrence
	Temperature *float64
}

// PanelKey identifies one CountPanel row.
type PanelKey struct {
	Region string
	Year   int
}

// PanelRow is one model-ready row of a CountPanel: the summed presence count
// and mean joined temperature for a (region, year) pair. Temperature is nil
// when every joined record in the group had no matching aggregate.
type PanelRow struct {
	Region      string
	Year        int
	Count       int
	Temperature *float64
}

// JoinTemperature left-joins cleaned records onto the temperature aggregates.
// Every record appears in the output exactly once, matched or not.
func JoinTemperature(records []CleanedOccurrence, aggregates map[TemperatureKey]float64) []JoinedOccurrence {
	joined := make([]JoinedOccurrence, 0, len(records))
	for _, rec := range records {
		j := JoinedOccurrence{CleanedOccurrence: rec}
		if mean, ok := aggregates[TemperatureKey{Year: rec.Year, CountryCode: rec.CountryCode}]; ok {
			v := mean
			j.Temperature = &v
		}
		joined = append(joined, j)
	}
	return joined
}

// BuildCountPanel groups joined records by (region, year), summing Presence
// and averaging the joined temperatures while ignoring missing values. Rows
// are ordered by region, then year, one row per key.
func BuildCountPanel(joined []JoinedOccurrence) []PanelRow {
	type group struct {
		count   int
		tempSum float64
		tempN   int
	}
	groups := make(map[PanelKey]*group)
	for _, j := range joined {
		key := PanelKey{Region: j.Region, Year: j.Year}
		g := groups[key]
		if g == nil {
			g = &group{}
			groups[key] = g
		}
		g.count += j.Presence
		if j.Temperature != nil {
			g.tempSum += *j.Temperature
			g.tempN++
		}
	}

	panel := make([]PanelRow, 0, len(groups))
	for key, g := range groups {
		row := PanelRow{Region: key.Region, Year: key.Year, Count: g.count}
		if g.tempN > 0 {
			mean := g.tempSum / float64(g.tempN)
			row.Temperature = &mean
		}
		panel = append(panel, row)
	}

	sort.Slice(panel, func(i, j int) bool {
		if panel[i].Region != panel[j].Region {
			return panel[i].Region < panel[j].Region
		}
		return panel[i].Year < panel[j].Year
	})
	return panel
}

// PanelSplit is a train/test partition of a CountPanel.
type PanelSplit struct {
	Train []PanelRow
	Test  []PanelRow
}

// SplitPanel partitions panel rows for the downstream regression consumer.
// The shuffle is driven entirely by the explicit seed, so a fixed seed gives
// the same split on every run. trainFrac is clamped to [0, 1].
func SplitPanel(rows []PanelRow, trainFrac float64, seed int64) PanelSplit {
	if trainFrac < 0 {
		trainFrac = 0
	}
	if trainFrac > 1 {
		trainFrac = 1
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(rows))

	nTrain := int(float64(len(rows)) * trainFrac)
	split := PanelSplit{
		Train: make([]PanelRow, 0, nTrain),
		Test:  make([]PanelRow, 0, len(rows)-nTrain),
	}
	for i, idx := range perm {
		if i < nTrain {
			split.Train = append(split.Train, rows[idx])
		} else {
			split.Test = append(split.Test, rows[idx])
		}
	}
	return split
}
