package parse

import "strings"

// LineClass says what a normalized bulletin line contains.
type LineClass int

const (
	// LineSkip carries neither dates nor a known pharmacy label.
	LineSkip LineClass = iota
	// LineDates carries one or more date tokens and no label.
	LineDates
	// LinePharmacy carries a known pharmacy label and no dates.
	LinePharmacy
	// LineBoth carries both.
	LineBoth
)

func (c LineClass) String() string {
	switch c {
	case LineDates:
		return "dates"
	case LinePharmacy:
		return "pharmacy"
	case LineBoth:
		return "dates+pharmacy"
	default:
		return "skip"
	}
}

// Classified is the tokenizer's verdict for one line.
type Classified struct {
	Class LineClass
	Dates []DateToken
	// Label is the directory label found in the line, empty for
	// LineSkip/LineDates.
	Label string
}

// ClassifyLine tokenizes one normalized line against a label set. Label
// matching is case-insensitive substring containment; the label sets are
// curated to be disjoint, so the first match is the only match.
func ClassifyLine(line string, labels []string) Classified {
	result := Classified{Dates: ExtractDayMonths(line)}

	upper := strings.ToUpper(line)
	for _, label := range labels {
		if strings.Contains(upper, strings.ToUpper(label)) {
			result.Label = label
			break
		}
	}

	switch {
	case len(result.Dates) > 0 && result.Label != "":
		result.Class = LineBoth
	case len(result.Dates) > 0:
		result.Class = LineDates
	case result.Label != "":
		result.Class = LinePharmacy
	default:
		result.Class = LineSkip
	}
	return result
}
