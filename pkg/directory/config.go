package directory

import (
	"fmt"
	"strings"

	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

// The file-level structs mirror the YAML layout; build() turns them into
// the runtime tables and validates the curation rules.

type directoryFile struct {
	Regions map[string]regionConfig `yaml:"regions"`
	Rural   ruralConfig             `yaml:"rural"`
}

type regionConfig struct {
	Location string        `yaml:"location"`
	Span     string        `yaml:"span"`
	Entries  []entryConfig `yaml:"entries"`
}

type entryConfig struct {
	Label    string         `yaml:"label"`
	Span     string         `yaml:"span,omitempty"`
	Pharmacy pharmacyConfig `yaml:"pharmacy"`
}

type pharmacyConfig struct {
	Name           string `yaml:"name"`
	Address        string `yaml:"address"`
	Phone          string `yaml:"phone,omitempty"`
	AdditionalInfo string `yaml:"additional_info,omitempty"`
}

type ruralConfig struct {
	Location    string                   `yaml:"location"`
	Zones       map[string][]entryConfig `yaml:"zones"`
	Alternating alternatingConfig        `yaml:"alternating"`
	FixedPair   fixedPairConfig          `yaml:"fixed_pair"`
}

type alternatingConfig struct {
	Zone       string        `yaml:"zone"`
	Sibling    string        `yaml:"sibling"`
	Span       string        `yaml:"span"`
	Candidates []entryConfig `yaml:"candidates"`
}

type fixedPairConfig struct {
	Zone       string           `yaml:"zone"`
	Sibling    string           `yaml:"sibling"`
	Span       string           `yaml:"span"`
	Pharmacies []pharmacyConfig `yaml:"pharmacies"`
}

func (p pharmacyConfig) pharmacy() schedule.Pharmacy {
	return schedule.Pharmacy{
		Name:           p.Name,
		Address:        p.Address,
		Phone:          p.Phone,
		AdditionalInfo: p.AdditionalInfo,
	}
}

func resolveSpan(name string) (schedule.DutyTimeSpan, error) {
	span, ok := schedule.SpanByName(name)
	if !ok {
		return schedule.DutyTimeSpan{}, fmt.Errorf("unknown shift span %q", name)
	}
	return span, nil
}

func (f *directoryFile) build() (*Directory, error) {
	dir := &Directory{Regions: make(map[schedule.RegionID]*RegionTable)}

	for id, cfg := range f.Regions {
		table, err := cfg.build(schedule.RegionID(id))
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", id, err)
		}
		dir.Regions[table.Region] = table
	}

	rural, err := f.Rural.build()
	if err != nil {
		return nil, fmt.Errorf("rural: %w", err)
	}
	dir.Rural = rural

	return dir, nil
}

func (c regionConfig) build(id schedule.RegionID) (*RegionTable, error) {
	span, err := resolveSpan(c.Span)
	if err != nil {
		return nil, err
	}
	table := &RegionTable{
		Region:   id,
		Location: schedule.LocationID(c.Location),
		Span:     span,
	}
	if table.Location == "" {
		table.Location = schedule.LocationID(id)
	}
	for _, entry := range c.Entries {
		table.Entries = append(table.Entries, Entry{
			Label:    entry.Label,
			Pharmacy: entry.Pharmacy.pharmacy(),
			Span:     span,
		})
	}
	if err := checkLabelsDisjoint(table.Labels()); err != nil {
		return nil, err
	}
	return table, nil
}

func (c ruralConfig) build() (*RuralTable, error) {
	table := &RuralTable{
		Location:    schedule.LocationID(c.Location),
		ZoneEntries: make(map[schedule.LocationID][]Entry),
	}
	if table.Location == "" {
		table.Location = schedule.LocationID(schedule.RegionSegoviaRural)
	}

	for zoneID, entries := range c.Zones {
		id := schedule.LocationID(zoneID)
		if _, ok := schedule.ZBSByID(id); !ok {
			return nil, fmt.Errorf("unknown ZBS zone %q", zoneID)
		}
		var labels []string
		for _, entry := range entries {
			span, err := resolveSpan(entry.Span)
			if err != nil {
				return nil, fmt.Errorf("zone %s label %q: %w", zoneID, entry.Label, err)
			}
			table.ZoneEntries[id] = append(table.ZoneEntries[id], Entry{
				Label:    entry.Label,
				Pharmacy: entry.Pharmacy.pharmacy(),
				Span:     span,
			})
			labels = append(labels, entry.Label)
		}
		if err := checkLabelsDisjoint(labels); err != nil {
			return nil, fmt.Errorf("zone %s: %w", zoneID, err)
		}
	}

	alternating, err := c.Alternating.build()
	if err != nil {
		return nil, fmt.Errorf("alternating: %w", err)
	}
	table.Alternating = alternating

	fixedPair, err := c.FixedPair.build()
	if err != nil {
		return nil, fmt.Errorf("fixed_pair: %w", err)
	}
	table.FixedPair = fixedPair

	return table, nil
}

func (c alternatingConfig) build() (AlternatingRule, error) {
	if len(c.Candidates) != 2 {
		return AlternatingRule{}, fmt.Errorf("need exactly 2 candidates, have %d", len(c.Candidates))
	}
	span, err := resolveSpan(c.Span)
	if err != nil {
		return AlternatingRule{}, err
	}
	rule := AlternatingRule{
		Zone:    schedule.LocationID(c.Zone),
		Sibling: schedule.LocationID(c.Sibling),
		Span:    span,
	}
	for i, candidate := range c.Candidates {
		rule.Candidates[i] = Candidate{
			Label:    candidate.Label,
			Pharmacy: candidate.Pharmacy.pharmacy(),
		}
	}
	return rule, nil
}

func (c fixedPairConfig) build() (FixedPairRule, error) {
	if len(c.Pharmacies) != 2 {
		return FixedPairRule{}, fmt.Errorf("need exactly 2 pharmacies, have %d", len(c.Pharmacies))
	}
	span, err := resolveSpan(c.Span)
	if err != nil {
		return FixedPairRule{}, err
	}
	rule := FixedPairRule{
		Zone:    schedule.LocationID(c.Zone),
		Sibling: schedule.LocationID(c.Sibling),
		Span:    span,
	}
	for i, pharmacy := range c.Pharmacies {
		rule.Pharmacies[i] = pharmacy.pharmacy()
	}
	return rule, nil
}

// checkLabelsDisjoint enforces the curation rule that makes longest-match
// resolution unnecessary: within one table, no label may contain another.
func checkLabelsDisjoint(labels []string) error {
	for i, a := range labels {
		for j, b := range labels {
			if i == j {
				continue
			}
			if strings.Contains(strings.ToUpper(a), strings.ToUpper(b)) {
				return fmt.Errorf("label %q contains label %q; labels must be disjoint", a, b)
			}
		}
	}
	return nil
}
