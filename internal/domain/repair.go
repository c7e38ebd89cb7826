package domain

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// RegionCorrection is one literal find/replace pair applied to region names
// after the legacy-encoding conversion.
type RegionCorrection struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// DefaultRegionCorrections returns the three known-corrupted region names in
// the plant export and their corrected forms. The mangling is Mac OS Roman
// bytes read back as Windows-1252; only these three names are affected.
func DefaultRegionCorrections() []RegionCorrection {
	return []RegionCorrection{
		{From: "Michoac‡n", To: "Michoacán"},
		{From: "QuŽbec", To: "Québec"},
		{From: "Nuevo Le—n", To: "Nuevo León"},
	}
}

// decodeLegacyRegion re-decodes a region name from the one legacy
// single-byte encoding the plant export was written in. Names that are
// already valid UTF-8 pass through untouched, which makes the conversion
// idempotent.
func decodeLegacyRegion(name string) string {
	if utf8.ValidString(name) {
		return name
	}
	decoded, err := charmap.Windows1252.NewDecoder().String(name)
	if err != nil {
		return name
	}
	return decoded
}

// RepairRegionNames applies the legacy-encoding conversion and the fixed
// correction table to every region name in the panel, returning a new panel
// and the number of rows whose region changed. Mis-encoded names outside the
// correction table are left as-is; there is deliberately no general
// transliteration here.
func RepairRegionNames(panel []PanelRow, corrections []RegionCorrection) ([]PanelRow, int) {
	repaired := make([]PanelRow, len(panel))
	changed := 0
	for i, row := range panel {
		name := decodeLegacyRegion(row.Region)
		for _, c := range corrections {
			name = strings.ReplaceAll(name, c.From, c.To)
		}
		if name != row.Region {
			changed++
		}
		row.Region = name
		repaired[i] = row
	}
	return repaired, changed
}
