package parse

import (
	"time"

	"go.uber.org/zap"

	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/directory"
	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

// compositeStrategy handles the weekly-block bulletins (El Espinar): a
// single line may carry several "dd-mmm" dates and a pharmacy label at
// once, and at the August→September boundary the dates are written out as
// a transition sentence ("DOMINGO 31 DE AGOSTO Y LUNES 1 DE SEPTIEMBRE")
// instead. Transition dates are translated to the internal "dd-mmm" form
// and merged with the regular dates of the same line before the shared
// pending fold runs.
type compositeStrategy struct {
	table    *directory.RegionTable
	seedYear int
	log      *zap.Logger
	now      func() time.Time
}

func newCompositeStrategy(table *directory.RegionTable, opts Options) *compositeStrategy {
	return &compositeStrategy{
		table:    table,
		seedYear: opts.seedYear(),
		log:      opts.logger(),
		now:      opts.now(),
	}
}

func (s *compositeStrategy) Region() schedule.RegionID {
	return s.table.Region
}

func (s *compositeStrategy) Locations() []schedule.LocationID {
	return []schedule.LocationID{s.table.Location}
}

func (s *compositeStrategy) Parse(pages []string, sourceURL string) (*Result, error) {
	if documentIsEmpty(pages) {
		return nil, ErrEmptyDocument
	}

	result := newResult()
	asm := newAssembler()

	fold := newLineFold(s.table, s.seedYear, s.log, asm, result)
	for pageIndex, page := range pages {
		for _, line := range SplitLines(page) {
			fold.step(pageIndex, line, ExtractTransitionDates(line))
		}
	}
	fold.finish()

	result.Schedules = asm.result(s.now().Year())
	return result, nil
}
