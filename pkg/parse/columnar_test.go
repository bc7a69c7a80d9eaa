package parse

import (
	"strings"
	"testing"

	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

const capitalPage = `FARMACIAS DE GUARDIA SEGOVIA CAPITAL

viernes, 14 de marzo de 2025

Farmacia Laura Ramos
C/ Juan Bravo, 31
921 460 096

Farmacia Andrés Madrid
Av. Fernández Ladreda, 28
921 425 551
Guardia nocturna hasta las 10:15

sábado, 15 de marzo de 2025

Farmacia Pilar Santos
Plaza Mayor, 4
921 466 218

Farmacia Carmen Bermejo
C/ José Zorrilla, 117
921 443 902
`

func capitalStrategy(t *testing.T) Strategy {
	t.Helper()
	strategy, err := ForRegion(schedule.RegionSegoviaCapital, nil, testOptions(0))
	if err != nil {
		t.Fatalf("building strategy: %v", err)
	}
	return strategy
}

func TestColumnarStrategy_PairsDayAndNightColumns(t *testing.T) {
	strategy := capitalStrategy(t)

	result, err := strategy.Parse([]string{capitalPage}, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	schedules := result.Schedules[schedule.LocationID("segovia-capital")]
	if len(schedules) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(schedules))
	}

	first := schedules[0]
	if first.Date.Day != 14 || first.Date.Month != "marzo" || first.Date.Year != 2025 {
		t.Errorf("first date = %s", first.Date)
	}
	if first.Date.DayOfWeek != "viernes" {
		t.Errorf("first weekday = %q, want viernes", first.Date.DayOfWeek)
	}
	if len(first.Shifts) != 2 {
		t.Fatalf("expected day and night shifts, got %d", len(first.Shifts))
	}

	var day, night *schedule.ShiftAssignment
	for i := range first.Shifts {
		switch {
		case first.Shifts[i].Span.SameHours(schedule.SpanCapitalDay):
			day = &first.Shifts[i]
		case first.Shifts[i].Span.SameHours(schedule.SpanCapitalNight):
			night = &first.Shifts[i]
		}
	}
	if day == nil || night == nil {
		t.Fatalf("missing day or night shift: %+v", first.Shifts)
	}
	if day.Pharmacies[0].Name != "Farmacia Laura Ramos" {
		t.Errorf("day pharmacy = %q", day.Pharmacies[0].Name)
	}
	if day.Pharmacies[0].Phone != "921 460 096" {
		t.Errorf("day phone = %q", day.Pharmacies[0].Phone)
	}
	if night.Pharmacies[0].Name != "Farmacia Andrés Madrid" {
		t.Errorf("night pharmacy = %q", night.Pharmacies[0].Name)
	}
	if !strings.Contains(night.Pharmacies[0].AdditionalInfo, "nocturna") {
		t.Errorf("night additional info = %q", night.Pharmacies[0].AdditionalInfo)
	}
}

// A band whose columns carry fewer than three descriptive lines is noise;
// the parse must recover, warn, and keep the other pages' rows.
func TestColumnarStrategy_RejectsThinBands(t *testing.T) {
	thin := "lunes, 17 de marzo de 2025\n\nFarmacia Incompleta\nC/ Sola, 1\n\nFarmacia También Corta\nC/ Breve, 2\n"
	strategy := capitalStrategy(t)

	result, err := strategy.Parse([]string{thin, capitalPage}, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	schedules := result.Schedules[schedule.LocationID("segovia-capital")]
	if len(schedules) != 2 {
		t.Fatalf("expected 2 schedules from the good page only, got %d", len(schedules))
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for the page with no recognizable rows")
	}
}

func TestColumnarStrategy_SkipsColumnHeaders(t *testing.T) {
	page := "viernes, 14 de marzo de 2025\n\nDÍA\nFarmacia Laura Ramos\nC/ Juan Bravo, 31\n921 460 096\n\nNOCHE\nFarmacia Andrés Madrid\nAv. Fernández Ladreda, 28\n921 425 551\n"
	strategy := capitalStrategy(t)

	result, err := strategy.Parse([]string{page}, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	schedules := result.Schedules[schedule.LocationID("segovia-capital")]
	if len(schedules) != 1 {
		t.Fatalf("expected 1 schedule, got %d", len(schedules))
	}
}

func TestColumnarStrategy_EmptyDocument(t *testing.T) {
	strategy := capitalStrategy(t)
	if _, err := strategy.Parse([]string{""}, ""); err != ErrEmptyDocument {
		t.Errorf("err = %v, want ErrEmptyDocument", err)
	}
}
