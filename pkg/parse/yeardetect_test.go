package parse

import (
	"strings"
	"testing"
	"time"
)

func fixedNow(year int) time.Time {
	return time.Date(year, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func TestDetectBaseYear_RightmostURLYearWins(t *testing.T) {
	pages := []string{"GUARDIAS FARMACIAS RURALES\n14-ene RIAZA"}
	url := "https://cofsegovia.com/2026/01/RURALES-2025.pdf"

	detection := DetectBaseYear(pages, url, fixedNow(2025))
	if detection.Year != 2025 {
		t.Errorf("year = %d, want 2025 (filename year beats path year)", detection.Year)
	}
	if detection.Source != YearFromURL {
		t.Errorf("source = %s, want %s", detection.Source, YearFromURL)
	}
	if !detection.Valid {
		t.Error("URL-derived year should be valid")
	}
}

func TestDetectBaseYear_URLIgnoresNonYearNumbers(t *testing.T) {
	url := "https://cofsegovia.com/uploads/9999/RURALES-2025.pdf"
	detection := DetectBaseYear([]string{"x"}, url, fixedNow(2025))
	if detection.Year != 2025 || detection.Source != YearFromURL {
		t.Errorf("got %+v, want 2025 from url", detection)
	}
}

// A plausible year embedded in a longer digit run is not a year candidate:
// "20251234" must not contribute "2025".
func TestDetectBaseYear_URLIgnoresDigitsInsideLongerRuns(t *testing.T) {
	url := "https://cofsegovia.com/20251234/FARMACIAS.pdf"
	detection := DetectBaseYear([]string{"CALENDARIO DE GUARDIAS 2024"}, url, fixedNow(2025))
	if detection.Source != YearFromText || detection.Year != 2024 {
		t.Errorf("got %+v, want 2024 from document text", detection)
	}
}

func TestDetectBaseYear_ExplicitTextYear(t *testing.T) {
	pages := []string{"SERVICIOS DE GUARDIA AÑO 2025\n..."}
	detection := DetectBaseYear(pages, "", fixedNow(2025))
	if detection.Year != 2025 || detection.Source != YearFromText {
		t.Errorf("got %+v, want 2025 from text", detection)
	}
}

func TestDetectBaseYear_SpanUsesFirstYear(t *testing.T) {
	pages := []string{"CALENDARIO DE GUARDIAS 2024-2025"}
	detection := DetectBaseYear(pages, "", fixedNow(2025))
	if detection.Year != 2024 {
		t.Errorf("year = %d, want the first year of the span", detection.Year)
	}
}

func TestDetectBaseYear_LoosePatternHandlesSeparators(t *testing.T) {
	pages := []string{"CALENDARIO DE GUARDIAS 2 0 2 5"}
	detection := DetectBaseYear(pages, "", fixedNow(2025))
	if detection.Year != 2025 {
		t.Errorf("year = %d, want 2025 from loose pattern", detection.Year)
	}
	if detection.Source != YearFromLooseText {
		t.Errorf("source = %s, want %s", detection.Source, YearFromLooseText)
	}
}

func TestDetectBaseYear_FallbackIsFlaggedInvalid(t *testing.T) {
	pages := []string{"GUARDIAS FARMACIAS RURALES sin fecha"}
	detection := DetectBaseYear(pages, "", fixedNow(2025))
	if detection.Year != 2025 {
		t.Errorf("fallback year = %d, want current year 2025", detection.Year)
	}
	if detection.Valid {
		t.Error("fallback result must be flagged invalid")
	}
	if detection.Warning == "" {
		t.Error("fallback result must carry a warning")
	}
}

func TestDetectBaseYear_RejectsDistantYears(t *testing.T) {
	pages := []string{"ARCHIVO HISTÓRICO 2020"}
	detection := DetectBaseYear(pages, "", fixedNow(2025))
	if detection.Source != YearFromFallback {
		t.Errorf("a year 5 years out must be rejected, got source %s year %d",
			detection.Source, detection.Year)
	}
}

func TestDetectBaseYear_WarnsAtTwoYearDistance(t *testing.T) {
	pages := []string{"CALENDARIO DE GUARDIAS 2027"}
	detection := DetectBaseYear(pages, "", fixedNow(2025))
	if detection.Year != 2027 || !detection.Valid {
		t.Fatalf("a year exactly 2 out should pass with a warning, got %+v", detection)
	}
	if detection.Warning == "" {
		t.Error("expected a soft warning at distance 2")
	}
}

func TestDetectBaseYear_DecemberAdjustment(t *testing.T) {
	pages := []string{"GUARDIAS 2025\n02-dic RIAZA\n03-dic SEPÚLVEDA"}
	detection := DetectBaseYear(pages, "", fixedNow(2025))
	if detection.Year != 2024 {
		t.Errorf("December-opening document: year = %d, want 2024", detection.Year)
	}
}

func TestDetectBaseYear_DecemberAdjustmentAppliesToURLYear(t *testing.T) {
	pages := []string{"02-dic RIAZA"}
	url := "https://cofsegovia.com/RURALES-2025.pdf"
	detection := DetectBaseYear(pages, url, fixedNow(2025))
	if detection.Year != 2024 {
		t.Errorf("URL-sourced year must also be December-adjusted, got %d", detection.Year)
	}
}

func TestDetectBaseYear_DecemberBeyondWindowIgnored(t *testing.T) {
	padding := strings.Repeat("RELACIÓN DE SERVICIOS DE URGENCIA \n", 20)
	pages := []string{"GUARDIAS 2025\n" + padding + "02-dic RIAZA"}
	detection := DetectBaseYear(pages, "", fixedNow(2025))
	if detection.Year != 2025 {
		t.Errorf("December token past the head window must not adjust, got %d", detection.Year)
	}
}
