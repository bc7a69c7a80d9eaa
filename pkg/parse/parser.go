package parse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/directory"
	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

// ErrEmptyDocument signals that no page held any parseable content. It is
// the only fatal outcome of a parse: single bad lines or pages are skipped,
// and callers receiving this error decide whether to keep serving
// previously cached data.
var ErrEmptyDocument = errors.New("document contains no parseable pages")

// Strategy parses one bulletin layout into per-location schedules. All
// strategies are pure passes over already-extracted page text; none does
// I/O. A strategy must be driven strictly in page order: the running-year
// counter and the first-occurrence ordering used by the rural derivation
// are both order-dependent.
type Strategy interface {
	// Region returns the bulletin region this strategy handles.
	Region() schedule.RegionID

	// Locations returns the duty locations the strategy can emit, in
	// display order.
	Locations() []schedule.LocationID

	// Parse consumes the bulletin's pages and an optional source URL (used
	// only for year hints) and returns per-location schedules sorted
	// ascending by date. Unparseable lines are skipped and reported as
	// warnings, never as errors.
	Parse(pages []string, sourceURL string) (*Result, error)
}

// Result is a full-document parse outcome.
type Result struct {
	Schedules map[schedule.LocationID][]*schedule.PharmacySchedule
	// Year is set by the rural strategy, which resolves a single base year
	// up front; the counter-based strategies leave it zero.
	Year YearDetection
	// Warnings collects every recovered problem: skipped lines, dropped
	// pending facts, discarded dates, failed derivations.
	Warnings []string
}

func newResult() *Result {
	return &Result{Schedules: make(map[schedule.LocationID][]*schedule.PharmacySchedule)}
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Options configures strategy construction.
type Options struct {
	// SeedYear seeds the running-year counter of the simple and composite
	// strategies. Zero means the current year.
	SeedYear int
	Logger   *zap.Logger
	// Now is the current-time source for year validation; nil means
	// time.Now.
	Now func() time.Time
}

func (o Options) seedYear() int {
	if o.SeedYear != 0 {
		return o.SeedYear
	}
	return o.now()().Year()
}

func (o Options) now() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return time.Now
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

// ForRegion returns the strategy for a region. The region set is closed:
// strategies are selected from a static dispatch table, not an open
// registry, because a new bulletin layout always means new parsing code.
func ForRegion(region schedule.RegionID, dir *directory.Directory, opts Options) (Strategy, error) {
	build, ok := strategies[region]
	if !ok {
		return nil, fmt.Errorf("no parsing strategy for region %q", region)
	}
	return build(dir, opts)
}

// Regions lists the regions with a registered strategy.
func Regions() []schedule.RegionID {
	return []schedule.RegionID{
		schedule.RegionSegoviaCapital,
		schedule.RegionCuellar,
		schedule.RegionElEspinar,
		schedule.RegionSegoviaRural,
	}
}

var strategies = map[schedule.RegionID]func(*directory.Directory, Options) (Strategy, error){
	schedule.RegionSegoviaCapital: func(_ *directory.Directory, opts Options) (Strategy, error) {
		return newColumnarStrategy(opts), nil
	},
	schedule.RegionCuellar: func(dir *directory.Directory, opts Options) (Strategy, error) {
		table, ok := dir.Region(schedule.RegionCuellar)
		if !ok {
			return nil, fmt.Errorf("directory has no table for %s", schedule.RegionCuellar)
		}
		return newSimpleStrategy(table, opts), nil
	},
	schedule.RegionElEspinar: func(dir *directory.Directory, opts Options) (Strategy, error) {
		table, ok := dir.Region(schedule.RegionElEspinar)
		if !ok {
			return nil, fmt.Errorf("directory has no table for %s", schedule.RegionElEspinar)
		}
		return newCompositeStrategy(table, opts), nil
	},
	schedule.RegionSegoviaRural: func(dir *directory.Directory, opts Options) (Strategy, error) {
		if dir.Rural == nil {
			return nil, fmt.Errorf("directory has no rural table")
		}
		return newRuralStrategy(dir.Rural, opts), nil
	},
}

// documentIsEmpty reports whether every page is blank after normalization.
func documentIsEmpty(pages []string) bool {
	for _, page := range pages {
		if strings.TrimSpace(page) != "" {
			return false
		}
	}
	return true
}
