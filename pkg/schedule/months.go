package schedule

import "strings"

// monthNames are the Spanish month names in calendar order. Month values in
// DutyDate always use these lowercase forms.
var monthNames = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// monthAbbrevs are the 3-letter abbreviations used by the "dd-mmm" bulletin
// date tokens, index-aligned with monthNames.
var monthAbbrevs = []string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

// MonthNumber returns the 1-based calendar number for a Spanish month name
// or abbreviation, or 0 when the name is not recognized.
func MonthNumber(month string) int {
	m := strings.ToLower(strings.TrimSpace(month))
	for i, name := range monthNames {
		if m == name || m == monthAbbrevs[i] {
			return i + 1
		}
	}
	return 0
}

// MonthFromAbbrev maps a 3-letter abbreviation like "ago" to its full
// Spanish month name.
func MonthFromAbbrev(abbrev string) (string, bool) {
	a := strings.ToLower(strings.TrimSpace(abbrev))
	for i, abbr := range monthAbbrevs {
		if a == abbr {
			return monthNames[i], true
		}
	}
	return "", false
}

// MonthFromName validates a full Spanish month name, case-insensitively.
func MonthFromName(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, m := range monthNames {
		if n == m {
			return m, true
		}
	}
	return "", false
}

// AbbrevForMonth returns the 3-letter abbreviation for a full month name,
// or the input unchanged when it is not a known month.
func AbbrevForMonth(month string) string {
	m := strings.ToLower(strings.TrimSpace(month))
	for i, name := range monthNames {
		if m == name || m == monthAbbrevs[i] {
			return monthAbbrevs[i]
		}
	}
	return month
}
