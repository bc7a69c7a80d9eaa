package parse

import (
	"strings"
	"testing"

	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/directory"
	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

func espinarStrategy(t *testing.T, seedYear int) Strategy {
	t.Helper()
	dir, err := directory.Default()
	if err != nil {
		t.Fatalf("loading default directory: %v", err)
	}
	strategy, err := ForRegion(schedule.RegionElEspinar, dir, testOptions(seedYear))
	if err != nil {
		t.Fatalf("building strategy: %v", err)
	}
	return strategy
}

func TestCompositeStrategy_WeeklyBlockLine(t *testing.T) {
	strategy := espinarStrategy(t, 2025)

	result, err := strategy.Parse([]string{
		"18-ago 19-ago 20-ago 21-ago 22-ago 23-ago 24-ago FCIA. MARQUÉS",
	}, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	schedules := result.Schedules[schedule.LocationID("el-espinar")]
	if len(schedules) != 7 {
		t.Fatalf("expected 7 schedules for the weekly block, got %d", len(schedules))
	}
	for _, s := range schedules {
		if !strings.Contains(s.Shifts[0].Pharmacies[0].Name, "Lourdes Conde") {
			t.Errorf("date %s: pharmacy %q, want Lourdes Conde", s.Date, s.Shifts[0].Pharmacies[0].Name)
		}
	}
}

// The transition sentence and regular tokens must merge into one date list
// for the line, in the same internal representation.
func TestCompositeStrategy_TransitionSentence(t *testing.T) {
	strategy := espinarStrategy(t, 2025)

	result, err := strategy.Parse([]string{
		"DOMINGO 31 DE AGOSTO Y LUNES 1 DE SEPTIEMBRE FCIA. SAN RAFAEL",
	}, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	schedules := result.Schedules[schedule.LocationID("el-espinar")]
	if len(schedules) != 2 {
		t.Fatalf("expected 2 schedules from the transition sentence, got %d", len(schedules))
	}

	first, second := schedules[0], schedules[1]
	if first.Date.Token() != "31-ago" || first.Date.DayOfWeek != "domingo" {
		t.Errorf("first = %s (%s)", first.Date, first.Date.Token())
	}
	if second.Date.Token() != "01-sep" || second.Date.DayOfWeek != "lunes" {
		t.Errorf("second = %s (%s)", second.Date, second.Date.Token())
	}
	for _, s := range schedules {
		if !strings.Contains(s.Shifts[0].Pharmacies[0].Name, "Duque") {
			t.Errorf("date %s: pharmacy %q, want Duque", s.Date, s.Shifts[0].Pharmacies[0].Name)
		}
	}
}

func TestCompositeStrategy_MixedRegularAndTransition(t *testing.T) {
	strategy := espinarStrategy(t, 2025)

	result, err := strategy.Parse([]string{
		"25-ago 26-ago FCIA. PLAZA\nDOMINGO 31 DE AGOSTO Y LUNES 1 DE SEPTIEMBRE FCIA. PLAZA",
	}, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	schedules := result.Schedules[schedule.LocationID("el-espinar")]
	if len(schedules) != 4 {
		t.Fatalf("expected 4 schedules, got %d", len(schedules))
	}
	if schedules[3].Date.Month != "septiembre" {
		t.Errorf("last schedule month = %q, want septiembre", schedules[3].Date.Month)
	}
}
