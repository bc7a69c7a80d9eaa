package parse

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/directory"
	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

// ruralStrategy handles the Segovia Rural bulletin, a multi-zone table
// covering the eight ZBS sub-areas. Every line is matched against all
// zone label tables simultaneously: one line may assign pharmacies to
// several zones at once, and its single "dd-mmm-yy" date applies to every
// zone matched. Dates carry 2-digit years, so a single base year is
// resolved up front instead of running the rollover counter. Two zones are
// never stated directly and are derived after the full pass.
type ruralStrategy struct {
	table *directory.RuralTable
	log   *zap.Logger
	now   func() time.Time
}

func newRuralStrategy(table *directory.RuralTable, opts Options) *ruralStrategy {
	return &ruralStrategy{table: table, log: opts.logger(), now: opts.now()}
}

func (s *ruralStrategy) Region() schedule.RegionID {
	return schedule.RegionSegoviaRural
}

func (s *ruralStrategy) Locations() []schedule.LocationID {
	return schedule.ZBSLocationIDs()
}

func (s *ruralStrategy) Parse(pages []string, sourceURL string) (*Result, error) {
	if documentIsEmpty(pages) {
		return nil, ErrEmptyDocument
	}

	result := newResult()
	detection := DetectBaseYear(pages, sourceURL, s.now())
	result.Year = detection
	if detection.Warning != "" {
		result.Warnings = append(result.Warnings, detection.Warning)
	}

	asm := newAssembler()
	for pageIndex, page := range pages {
		for _, line := range SplitLines(page) {
			if line == "" {
				continue
			}
			s.parseLine(pageIndex, line, detection.Year, asm, result)
		}
	}

	schedules := asm.result(s.now().Year())
	deriveZones(strings.Join(pages, "\n"), s.table, schedules, result, s.log)
	result.Schedules = schedules
	return result, nil
}

func (s *ruralStrategy) parseLine(pageIndex int, line string, baseYear int, asm *assembler, result *Result) {
	tokens := ExtractDatedDayMonths(line)
	if len(tokens) == 0 {
		s.log.Debug("unrecognized line skipped",
			zap.String("region", string(schedule.RegionSegoviaRural)),
			zap.Int("page", pageIndex+1),
			zap.String("line", line))
		return
	}

	var dates []schedule.DutyDate
	for _, token := range tokens {
		year := ExpandTwoDigitYear(token.YY, baseYear)
		// A rural bulletin never reaches more than one year from its base;
		// a larger jump means the token's year digits are corrupt. The
		// date is discarded, its siblings on the same line survive.
		if year < baseYear-1 || year > baseYear+1 {
			result.warnf("page %d: date %s-%02d expands to out-of-range year %d (base %d), discarded",
				pageIndex+1, token.Token(), token.YY, year, baseYear)
			continue
		}
		dates = append(dates, ResolveDate(token.DateToken, year))
	}
	if len(dates) == 0 {
		return
	}

	upper := strings.ToUpper(line)
	matchedAny := false
	for _, zone := range schedule.ZBSLocationIDs() {
		for _, entry := range s.table.ZoneEntries[zone] {
			if !strings.Contains(upper, strings.ToUpper(entry.Label)) {
				continue
			}
			matchedAny = true
			for _, date := range dates {
				asm.add(fact{
					location:   zone,
					date:       date,
					span:       entry.Span,
					pharmacies: []schedule.Pharmacy{entry.Pharmacy},
				})
			}
		}
	}
	if !matchedAny {
		result.warnf("page %d: line with date(s) matched no zone label: %q", pageIndex+1, line)
	}
}
