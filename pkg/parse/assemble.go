package parse

import (
	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

// fact is one extracted (date, location, shift, pharmacy) observation.
// Strategies emit facts line by line; the assembler folds them into
// per-day schedule records.
type fact struct {
	location   schedule.LocationID
	date       schedule.DutyDate
	span       schedule.DutyTimeSpan
	pharmacies []schedule.Pharmacy
}

type dateKey struct {
	location schedule.LocationID
	year     int
	month    int
	day      int
}

// assembler groups facts into PharmacySchedule records keyed by
// (location, date), merging shift maps when several lines contribute to
// the same calendar day. Insertion order is kept per location until the
// final date sort.
type assembler struct {
	byKey map[dateKey]*schedule.PharmacySchedule
	order map[schedule.LocationID][]*schedule.PharmacySchedule
}

func newAssembler() *assembler {
	return &assembler{
		byKey: make(map[dateKey]*schedule.PharmacySchedule),
		order: make(map[schedule.LocationID][]*schedule.PharmacySchedule),
	}
}

func (a *assembler) add(f fact) {
	if len(f.pharmacies) == 0 {
		return
	}
	key := dateKey{
		location: f.location,
		year:     f.date.Year,
		month:    schedule.MonthNumber(f.date.Month),
		day:      f.date.Day,
	}
	record, ok := a.byKey[key]
	if !ok {
		record = &schedule.PharmacySchedule{Date: f.date}
		a.byKey[key] = record
		a.order[f.location] = append(a.order[f.location], record)
	} else if record.Date.DayOfWeek == "" && f.date.DayOfWeek != "" {
		// A later line may name the weekday the first one lacked.
		record.Date.DayOfWeek = f.date.DayOfWeek
	}
	record.Add(f.span, f.pharmacies...)
}

// result returns the per-location schedules sorted ascending by date,
// substituting currentYear for unresolved years.
func (a *assembler) result(currentYear int) map[schedule.LocationID][]*schedule.PharmacySchedule {
	out := make(map[schedule.LocationID][]*schedule.PharmacySchedule, len(a.order))
	for location, schedules := range a.order {
		schedule.Sort(schedules, currentYear)
		out[location] = schedules
	}
	return out
}
