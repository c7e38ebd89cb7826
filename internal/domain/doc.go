// Package domain models bumblebee and forage-plant occurrence records and the
// temperature series they are joined against.
//
// # Data Sources
//
// Occurrence records follow the GBIF Darwin Core column conventions. The two
// biological exports (bumblebee species, forage plants) share a schema; the
// columns this pipeline reads are:
//
//	dateIdentified    full date-time of identification, e.g. "2018-05-01T00:00:00"
//	occurrenceStatus  "PRESENT" for a confirmed observation, anything else otherwise
//	stateProvince     region name, e.g. "Ontario", "Michoacán"
//	countryCode       2-letter ISO code, one of US, CA, MX
//
// The temperature file is a wide-format export with one row per country and
// one column per calendar year. Year columns carry a single non-numeric
// marker before the digits ("X2015" for 2015) because the upstream export
// tool prefixes numeric headers. The 3-letter codes in its "Code" column are
// mapped to the 2-letter codes used by the occurrence files:
//
//	CAN → CA, MEX → MX, USA → US
//
// Codes outside this table are excluded from aggregation; the study area is
// North America and rows for other countries carry no matching occurrences.
//
// # Study Window
//
// Only observations identified in the 2013–2023 window are kept. The bounds
// are configurable but the defaults match the years with usable coverage in
// all three sources.
//
// # Missing Values
//
// Temperature is optional throughout: a *float64 nil means "no reading". A
// (region, year) group whose joined temperatures are all missing keeps a nil
// mean rather than a zero. Missing values are excluded from averages, never
// imputed.
//
// # Region Name Repair
//
// The plant export was produced on a machine that wrote region names in
// Mac OS Roman and later re-encoded them as Windows-1252, mangling the
// diacritics of three Mexican and Canadian region names ("Michoac‡n" for
// "Michoacán"). Repair is the one fixed encoding conversion plus exactly
// three literal substitutions; see [RepairRegionNames]. Artifacts outside
// that table are left unchanged.
package domain
