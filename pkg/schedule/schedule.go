// Package schedule defines the duty-schedule data model produced by the
// bulletin parsers: calendar dates, duty shift windows, pharmacies and the
// per-day schedule records that group them.
package schedule

import (
	"fmt"
	"sort"
)

// RegionID identifies a bulletin region. Each region has its own PDF
// bulletin and its own parsing strategy.
type RegionID string

const (
	RegionSegoviaCapital RegionID = "segovia-capital"
	RegionCuellar        RegionID = "cuellar"
	RegionElEspinar      RegionID = "el-espinar"
	RegionSegoviaRural   RegionID = "segovia-rural"
)

// LocationID identifies an addressable duty location: either a region's
// single location (simple regions) or one of the rural ZBS sub-areas.
type LocationID string

// DutyDate is a calendar date as it appears in a bulletin. Year is 0 when
// the line was parsed before the base year was known; it is resolved before
// a schedule is emitted, and consumers substitute the current year when it
// is still unset. Day/month consistency is not validated: bulletins
// occasionally contain typos and the parse must survive them.
type DutyDate struct {
	DayOfWeek string `json:"day_of_week,omitempty"`
	Day       int    `json:"day"`
	Month     string `json:"month"`
	Year      int    `json:"year,omitempty"`
}

// HasYear reports whether the date carries a resolved year.
func (d DutyDate) HasYear() bool {
	return d.Year != 0
}

// YearOr returns the date's year, or fallback when the year is unset.
func (d DutyDate) YearOr(fallback int) int {
	if d.Year != 0 {
		return d.Year
	}
	return fallback
}

// Token formats the date back to its "dd-mmm" bulletin token form, with the
// day zero-padded and the month as a 3-letter Spanish abbreviation.
func (d DutyDate) Token() string {
	return fmt.Sprintf("%02d-%s", d.Day, AbbrevForMonth(d.Month))
}

// String returns a human-readable form like "domingo 31 de agosto de 2025".
func (d DutyDate) String() string {
	s := fmt.Sprintf("%d de %s", d.Day, d.Month)
	if d.DayOfWeek != "" {
		s = d.DayOfWeek + " " + s
	}
	if d.Year != 0 {
		s = fmt.Sprintf("%s de %d", s, d.Year)
	}
	return s
}

// DutyTimeSpan is a named duty shift window. Identity is by the
// (start, end) pair, not the name: two spans with identical hours are
// interchangeable.
type DutyTimeSpan struct {
	Name        string `json:"name"`
	StartHour   int    `json:"start_hour"`
	StartMinute int    `json:"start_minute"`
	EndHour     int    `json:"end_hour"`
	EndMinute   int    `json:"end_minute"`
	EndsNextDay bool   `json:"ends_next_day,omitempty"`
}

// Fixed shift catalog. Bulletins never define these windows explicitly;
// they come from the association's published duty rules.
var (
	SpanFullDay = DutyTimeSpan{
		Name: "24h", StartHour: 10, StartMinute: 15, EndHour: 10, EndMinute: 15, EndsNextDay: true,
	}
	SpanCapitalDay = DutyTimeSpan{
		Name: "capital-day", StartHour: 10, StartMinute: 15, EndHour: 22, EndMinute: 0,
	}
	SpanCapitalNight = DutyTimeSpan{
		Name: "capital-night", StartHour: 22, StartMinute: 0, EndHour: 10, EndMinute: 15, EndsNextDay: true,
	}
	SpanRuralDaytime = DutyTimeSpan{
		Name: "rural-daytime", StartHour: 10, StartMinute: 0, EndHour: 20, EndMinute: 0,
	}
	SpanRuralExtendedDaytime = DutyTimeSpan{
		Name: "rural-extended-daytime", StartHour: 10, StartMinute: 0, EndHour: 22, EndMinute: 0,
	}
)

// SpanByName returns a catalog span by its name.
func SpanByName(name string) (DutyTimeSpan, bool) {
	for _, span := range []DutyTimeSpan{
		SpanFullDay, SpanCapitalDay, SpanCapitalNight, SpanRuralDaytime, SpanRuralExtendedDaytime,
	} {
		if span.Name == name {
			return span, true
		}
	}
	return DutyTimeSpan{}, false
}

// SameHours reports whether two spans cover the same window, regardless of
// their names.
func (s DutyTimeSpan) SameHours(other DutyTimeSpan) bool {
	return s.StartHour == other.StartHour &&
		s.StartMinute == other.StartMinute &&
		s.EndHour == other.EndHour &&
		s.EndMinute == other.EndMinute &&
		s.EndsNextDay == other.EndsNextDay
}

// String returns the window as "10:15-22:00" (with "+1d" when it crosses
// midnight).
func (s DutyTimeSpan) String() string {
	out := fmt.Sprintf("%02d:%02d-%02d:%02d", s.StartHour, s.StartMinute, s.EndHour, s.EndMinute)
	if s.EndsNextDay {
		out += " +1d"
	}
	return out
}

// Pharmacy is an immutable pharmacy identity. Schedules may reference
// logically-equal pharmacies without sharing an identity; no deduplication
// is performed.
type Pharmacy struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	Phone          string `json:"phone,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

// ShiftAssignment pairs one duty shift window with the pharmacies on call
// during it.
type ShiftAssignment struct {
	Span       DutyTimeSpan `json:"span"`
	Pharmacies []Pharmacy   `json:"pharmacies"`
}

// PharmacySchedule is one calendar day's duty record for one location. A
// location may have several shifts active the same day (e.g. capital day
// plus night). The shift list is non-empty, and each shift's pharmacy list
// is non-empty.
type PharmacySchedule struct {
	Date   DutyDate          `json:"date"`
	Shifts []ShiftAssignment `json:"shifts"`
}

// Add appends pharmacies to the shift matching span's hours, creating the
// shift when no existing one matches. Pharmacies with no entries are
// ignored.
func (ps *PharmacySchedule) Add(span DutyTimeSpan, pharmacies ...Pharmacy) {
	if len(pharmacies) == 0 {
		return
	}
	for i := range ps.Shifts {
		if ps.Shifts[i].Span.SameHours(span) {
			ps.Shifts[i].Pharmacies = append(ps.Shifts[i].Pharmacies, pharmacies...)
			return
		}
	}
	ps.Shifts = append(ps.Shifts, ShiftAssignment{Span: span, Pharmacies: pharmacies})
}

// Sort orders schedules ascending by (year, month, day), substituting
// currentYear for dates whose year is unset.
func Sort(schedules []*PharmacySchedule, currentYear int) {
	sort.SliceStable(schedules, func(i, j int) bool {
		a, b := schedules[i].Date, schedules[j].Date
		ay, by := a.YearOr(currentYear), b.YearOr(currentYear)
		if ay != by {
			return ay < by
		}
		am, bm := MonthNumber(a.Month), MonthNumber(b.Month)
		if am != bm {
			return am < bm
		}
		return a.Day < b.Day
	})
}
