package parse

import (
	"time"

	"go.uber.org/zap"

	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/directory"
	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

// simpleStrategy handles the two-column table bulletins (Cuéllar): each
// content line carries one or more "dd-mmm" dates with exactly one
// pharmacy label on the same line or the next one. No per-line year text
// exists; year rollover is tracked by counting "01-ene" tokens.
type simpleStrategy struct {
	table    *directory.RegionTable
	seedYear int
	log      *zap.Logger
	now      func() time.Time
}

func newSimpleStrategy(table *directory.RegionTable, opts Options) *simpleStrategy {
	return &simpleStrategy{
		table:    table,
		seedYear: opts.seedYear(),
		log:      opts.logger(),
		now:      opts.now(),
	}
}

func (s *simpleStrategy) Region() schedule.RegionID {
	return s.table.Region
}

func (s *simpleStrategy) Locations() []schedule.LocationID {
	return []schedule.LocationID{s.table.Location}
}

func (s *simpleStrategy) Parse(pages []string, sourceURL string) (*Result, error) {
	if documentIsEmpty(pages) {
		return nil, ErrEmptyDocument
	}

	result := newResult()
	asm := newAssembler()

	fold := newLineFold(s.table, s.seedYear, s.log, asm, result)
	for pageIndex, page := range pages {
		for _, line := range SplitLines(page) {
			fold.step(pageIndex, line, nil)
		}
	}
	fold.finish()

	result.Schedules = asm.result(s.now().Year())
	return result, nil
}

// lineFold is the pending-dates/pending-pharmacy accumulator shared by the
// simple and composite strategies. Dates without a label on their own line
// wait for the label; a label without dates waits for them. Whenever a new
// pending value would overwrite an unresolved one, the old one is dropped
// with a warning.
type lineFold struct {
	table   *directory.RegionTable
	labels  []string
	tracker YearTracker
	log     *zap.Logger
	asm     *assembler
	result  *Result

	pendingDates []schedule.DutyDate
	pendingEntry *directory.Entry
}

func newLineFold(table *directory.RegionTable, seedYear int, log *zap.Logger, asm *assembler, result *Result) *lineFold {
	return &lineFold{
		table:   table,
		labels:  table.Labels(),
		tracker: NewYearTracker(seedYear),
		log:     log,
		asm:     asm,
		result:  result,
	}
}

// step consumes one normalized line. Classification runs through
// ClassifyLine; extra carries date tokens the classifier does not extract
// itself, so the composite strategy can merge transition sentence dates
// into the same scan.
func (f *lineFold) step(pageIndex int, line string, extra []DateToken) {
	if line == "" {
		return
	}

	classified := ClassifyLine(line, f.labels)
	tokens := append(classified.Dates, extra...)

	var entry directory.Entry
	hasEntry := classified.Label != ""
	if hasEntry {
		// The classifier found the label in this line, so the directory
		// lookup cannot miss; both scan the labels in declaration order.
		entry, _ = f.table.Lookup(line)
	}
	dates := f.resolve(tokens)

	switch {
	case len(dates) > 0 && hasEntry:
		f.dropPending(pageIndex, line)
		f.emit(dates, entry)

	case len(dates) > 0:
		if f.pendingEntry != nil {
			f.emit(dates, *f.pendingEntry)
			f.pendingEntry = nil
			return
		}
		if len(f.pendingDates) > 0 {
			f.result.warnf("page %d: dates %v dropped, no pharmacy label found before line %q",
				pageIndex+1, tokenStrings(f.pendingDates), line)
		}
		f.pendingDates = dates

	case hasEntry:
		if len(f.pendingDates) > 0 {
			f.emit(f.pendingDates, entry)
			f.pendingDates = nil
			return
		}
		if f.pendingEntry != nil {
			f.result.warnf("page %d: pharmacy %q dropped, no dates found before line %q",
				pageIndex+1, f.pendingEntry.Label, line)
		}
		f.pendingEntry = &entry

	default:
		f.log.Debug("unrecognized line skipped",
			zap.String("region", string(f.table.Region)),
			zap.Int("page", pageIndex+1),
			zap.String("line", line))
	}
}

// resolve threads the year tracker through the tokens in text order.
func (f *lineFold) resolve(tokens []DateToken) []schedule.DutyDate {
	var dates []schedule.DutyDate
	for _, token := range tokens {
		var year int
		f.tracker, year = f.tracker.Observe(token)
		dates = append(dates, ResolveDate(token, year))
	}
	return dates
}

func (f *lineFold) emit(dates []schedule.DutyDate, entry directory.Entry) {
	for _, date := range dates {
		f.asm.add(fact{
			location:   f.table.Location,
			date:       date,
			span:       entry.Span,
			pharmacies: []schedule.Pharmacy{entry.Pharmacy},
		})
	}
}

func (f *lineFold) dropPending(pageIndex int, line string) {
	if len(f.pendingDates) > 0 {
		f.result.warnf("page %d: dates %v dropped, superseded by complete line %q",
			pageIndex+1, tokenStrings(f.pendingDates), line)
		f.pendingDates = nil
	}
	if f.pendingEntry != nil {
		f.result.warnf("page %d: pharmacy %q dropped, superseded by complete line %q",
			pageIndex+1, f.pendingEntry.Label, line)
		f.pendingEntry = nil
	}
}

// finish reports facts still pending at end of document.
func (f *lineFold) finish() {
	if len(f.pendingDates) > 0 {
		f.result.warnf("end of document: dates %v never matched a pharmacy label",
			tokenStrings(f.pendingDates))
	}
	if f.pendingEntry != nil {
		f.result.warnf("end of document: pharmacy %q never matched any dates", f.pendingEntry.Label)
	}
}

func tokenStrings(dates []schedule.DutyDate) []string {
	tokens := make([]string, len(dates))
	for i, date := range dates {
		tokens[i] = date.Token()
	}
	return tokens
}
