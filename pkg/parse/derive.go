package parse

import (
	"strings"

	"go.uber.org/zap"

	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/directory"
	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

// deriveZones completes the rural data set for the two ZBS zones whose
// pharmacies are never named against their own label in the bulletin. Both
// borrow a sibling zone's date sequence as positional scaffolding; when the
// sibling produced no schedules, the dependent zone is omitted with a
// warning rather than populated with placeholder data.
func deriveZones(document string, table *directory.RuralTable, schedules map[schedule.LocationID][]*schedule.PharmacySchedule, result *Result, log *zap.Logger) {
	deriveAlternating(document, table.Alternating, schedules, result, log)
	deriveFixedPair(table.FixedPair, schedules, result, log)
}

// deriveAlternating assigns the two candidate pharmacies to the sibling's
// dates in a two-week alternation: entries are numbered by 1-based week
// (index div 7 plus one), odd weeks belong to whichever candidate's label
// occurs first in raw document order, even weeks to the other.
func deriveAlternating(document string, rule directory.AlternatingRule, schedules map[schedule.LocationID][]*schedule.PharmacySchedule, result *Result, log *zap.Logger) {
	sibling := schedules[rule.Sibling]
	if len(sibling) == 0 {
		result.warnf("zone %s: derivation skipped, sibling zone %s has no schedules", rule.Zone, rule.Sibling)
		log.Warn("alternating derivation skipped",
			zap.String("zone", string(rule.Zone)),
			zap.String("sibling", string(rule.Sibling)))
		return
	}

	first, second := orderCandidates(document, rule.Candidates, result, rule.Zone)

	derived := make([]*schedule.PharmacySchedule, 0, len(sibling))
	for index, scaffold := range sibling {
		week := index/7 + 1
		candidate := first
		if week%2 == 0 {
			candidate = second
		}
		derived = append(derived, &schedule.PharmacySchedule{
			Date: scaffold.Date,
			Shifts: []schedule.ShiftAssignment{
				{Span: rule.Span, Pharmacies: []schedule.Pharmacy{candidate.Pharmacy}},
			},
		})
	}
	schedules[rule.Zone] = derived
}

// orderCandidates decides which candidate leads the rotation by comparing
// the index of first textual occurrence of each candidate's label. The
// bulletin reveals nothing else about the rotation. The document is
// whitespace-normalized first so a multi-word label survives the PDF
// extraction's space artifacts, same as every other label match.
func orderCandidates(document string, candidates [2]directory.Candidate, result *Result, zone schedule.LocationID) (directory.Candidate, directory.Candidate) {
	upper := strings.ToUpper(NormalizeSpaces(document))
	firstIndex := strings.Index(upper, strings.ToUpper(candidates[0].Label))
	secondIndex := strings.Index(upper, strings.ToUpper(candidates[1].Label))

	if firstIndex < 0 && secondIndex < 0 {
		result.warnf("zone %s: neither candidate label %q nor %q found in document, keeping configured order",
			zone, candidates[0].Label, candidates[1].Label)
		return candidates[0], candidates[1]
	}
	if secondIndex >= 0 && (firstIndex < 0 || secondIndex < firstIndex) {
		return candidates[1], candidates[0]
	}
	return candidates[0], candidates[1]
}

// deriveFixedPair duplicates a constant pair of pharmacies across every
// date of the sibling's scaffolding, unconditionally.
func deriveFixedPair(rule directory.FixedPairRule, schedules map[schedule.LocationID][]*schedule.PharmacySchedule, result *Result, log *zap.Logger) {
	sibling := schedules[rule.Sibling]
	if len(sibling) == 0 {
		result.warnf("zone %s: derivation skipped, sibling zone %s has no schedules", rule.Zone, rule.Sibling)
		log.Warn("fixed-pair derivation skipped",
			zap.String("zone", string(rule.Zone)),
			zap.String("sibling", string(rule.Sibling)))
		return
	}

	derived := make([]*schedule.PharmacySchedule, 0, len(sibling))
	for _, scaffold := range sibling {
		derived = append(derived, &schedule.PharmacySchedule{
			Date: scaffold.Date,
			Shifts: []schedule.ShiftAssignment{
				{Span: rule.Span, Pharmacies: []schedule.Pharmacy{rule.Pharmacies[0], rule.Pharmacies[1]}},
			},
		})
	}
	schedules[rule.Zone] = derived
}
