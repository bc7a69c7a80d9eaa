// Package directory holds the static pharmacy lookup tables: per-region
// mappings from the short labels that appear in bulletin text to full
// pharmacy identities, plus the rural zone tables and the derivation rules
// for the two zones whose schedules are never stated directly.
//
// Directories are curated configuration, not parse output. They load once
// at process start from an embedded YAML document into read-only maps, so
// concurrent per-region parsing needs no synchronization. An override
// directory can be loaded on top for out-of-band corrections (a pharmacy
// changes phone numbers more often than this module changes code).
package directory

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

//go:embed directories.yaml
var embeddedDirectories []byte

// Entry maps one in-bulletin label to a pharmacy. Labels are matched
// case-insensitively by substring containment, so the label sets are
// curated to be disjoint within a region: no label may contain another.
type Entry struct {
	Label    string
	Pharmacy schedule.Pharmacy
	Span     schedule.DutyTimeSpan
}

// RegionTable is the directory for one simple region: a single duty
// location and its labeled pharmacies, all sharing one shift window.
type RegionTable struct {
	Region   schedule.RegionID
	Location schedule.LocationID
	Span     schedule.DutyTimeSpan
	Entries  []Entry
}

// Labels returns the table's labels in declaration order.
func (t *RegionTable) Labels() []string {
	labels := make([]string, len(t.Entries))
	for i, entry := range t.Entries {
		labels[i] = entry.Label
	}
	return labels
}

// Lookup returns the entry whose label occurs (case-insensitively) in the
// given normalized line.
func (t *RegionTable) Lookup(line string) (Entry, bool) {
	upper := strings.ToUpper(line)
	for _, entry := range t.Entries {
		if strings.Contains(upper, strings.ToUpper(entry.Label)) {
			return entry, true
		}
	}
	return Entry{}, false
}

// Candidate is one of the two pharmacies an alternating derived zone
// rotates between. Label is the distinguishing text searched for in raw
// document order to decide which candidate leads the rotation.
type Candidate struct {
	Label    string
	Pharmacy schedule.Pharmacy
}

// AlternatingRule describes a zone whose schedule is derived as a two-week
// alternation between two candidate pharmacies over a sibling zone's dates.
type AlternatingRule struct {
	Zone       schedule.LocationID
	Sibling    schedule.LocationID
	Span       schedule.DutyTimeSpan
	Candidates [2]Candidate
}

// FixedPairRule describes a zone whose schedule duplicates a constant pair
// of pharmacies across a sibling zone's dates.
type FixedPairRule struct {
	Zone       schedule.LocationID
	Sibling    schedule.LocationID
	Span       schedule.DutyTimeSpan
	Pharmacies [2]schedule.Pharmacy
}

// RuralTable is the directory for the multi-zone rural region: per-zone
// label tables (each entry carrying its own shift window) plus the two
// derivation rules.
type RuralTable struct {
	Location    schedule.LocationID
	ZoneEntries map[schedule.LocationID][]Entry
	Alternating AlternatingRule
	FixedPair   FixedPairRule
}

// Directory is the full static lookup set for every region.
type Directory struct {
	Regions map[schedule.RegionID]*RegionTable
	Rural   *RuralTable
}

// Region returns the table for a simple region.
func (d *Directory) Region(id schedule.RegionID) (*RegionTable, bool) {
	table, ok := d.Regions[id]
	return table, ok
}

var (
	defaultOnce      sync.Once
	defaultDirectory *Directory
	defaultErr       error
)

// Default returns the directory built from the embedded configuration.
// The result is shared and must be treated as read-only.
func Default() (*Directory, error) {
	defaultOnce.Do(func() {
		defaultDirectory, defaultErr = Parse(embeddedDirectories)
	})
	return defaultDirectory, defaultErr
}

// Parse builds a Directory from YAML configuration.
func Parse(data []byte) (*Directory, error) {
	var file directoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing directory YAML: %w", err)
	}
	return file.build()
}

// LoadFile parses a directory override from a single YAML file.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory file: %w", err)
	}
	dir, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return dir, nil
}
