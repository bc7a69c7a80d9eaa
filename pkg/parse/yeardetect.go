package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// YearSource records which detection layer produced a base year.
type YearSource string

const (
	YearFromURL       YearSource = "url"
	YearFromText      YearSource = "text"
	YearFromLooseText YearSource = "text-loose"
	YearFromFallback  YearSource = "fallback"
)

// YearDetection is the outcome of base-year detection for a rural bulletin.
// Valid is false when every layer failed and the current year was used as a
// best-effort answer; callers decide whether such a result may be cached.
type YearDetection struct {
	Year    int        `json:"year"`
	Source  YearSource `json:"source"`
	Valid   bool       `json:"valid"`
	Warning string     `json:"warning,omitempty"`
}

var (
	// urlYearPattern matches standalone 4-digit numbers; digits inside a
	// longer run (invoice-style path segments) are not year candidates.
	urlYearPattern = regexp.MustCompile(`\b\d{4}\b`)

	// strictYearPattern matches an explicit year in document text, with an
	// optional second year for spans like "2024-2025"; the first of the
	// two anchors the bulletin.
	strictYearPattern = regexp.MustCompile(`\b(20[2-3]\d)(?:\s*[-–/]\s*20[2-3]\d)?\b`)

	// looseYearPattern tolerates stray separators between the digits,
	// which some extractions produce ("2 0 2 5").
	looseYearPattern = regexp.MustCompile(`\b2[\s.\-_]?0[\s.\-_]?([2-3])[\s.\-_]?(\d)\b`)

	// decemberHeadPattern detects a December date token near the start of
	// the document.
	decemberHeadPattern = regexp.MustCompile(`(?i)\b\d{1,2}[-‐]dic\b`)
)

// decemberHeadWindow is how far into the page text a December token still
// counts as the document "opening with December".
const decemberHeadWindow = 500

// DetectBaseYear determines the single base year a whole rural bulletin
// refers to. Layers are tried in order, first success wins: a 4-digit year
// in the source URL (rightmost first), an explicit year in the document
// text, a loose separator-tolerant match, and finally the current year.
//
// Whichever layer supplied the year, a December correction then runs: a
// bulletin whose text opens with December dates is describing the tail of
// the previous year's cycle, so the year is decremented by one. This
// assumes a bulletin cycle never spans much more than a year; a bulletin
// with an unusual cycle length would mis-resolve by one year, and there is
// no signal in the text to detect that case.
func DetectBaseYear(pages []string, sourceURL string, now time.Time) YearDetection {
	text := strings.Join(pages, "\n")

	detection := YearDetection{Source: YearFromFallback, Year: now.Year()}
	if year, warning, ok := yearFromURL(sourceURL, now); ok {
		detection = YearDetection{Year: year, Source: YearFromURL, Valid: true, Warning: warning}
	} else if year, warning, ok := yearFromText(text, now); ok {
		detection = YearDetection{Year: year, Source: YearFromText, Valid: true, Warning: warning}
	} else if year, warning, ok := yearFromLooseText(text, now); ok {
		detection = YearDetection{Year: year, Source: YearFromLooseText, Valid: true, Warning: warning}
	} else {
		detection.Warning = fmt.Sprintf("no year found in URL or document text; defaulting to %d", now.Year())
	}

	if opensWithDecember(text) {
		detection.Year--
	}
	return detection
}

// yearFromURL scans the URL's 4-digit numbers right to left, so a year in
// the filename beats one in an earlier path segment. Candidates further
// than 20 years from the current year are treated as incidental numbers,
// not years.
func yearFromURL(sourceURL string, now time.Time) (int, string, bool) {
	if sourceURL == "" {
		return 0, "", false
	}
	matches := urlYearPattern.FindAllString(sourceURL, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		candidate, err := strconv.Atoi(matches[i])
		if err != nil {
			continue
		}
		if abs(candidate-now.Year()) > 20 {
			continue
		}
		if warning, ok := validateYear(candidate, now); ok {
			return candidate, warning, true
		}
	}
	return 0, "", false
}

func yearFromText(text string, now time.Time) (int, string, bool) {
	match := strictYearPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, "", false
	}
	candidate, _ := strconv.Atoi(match[1])
	warning, ok := validateYear(candidate, now)
	return candidate, warning, ok
}

func yearFromLooseText(text string, now time.Time) (int, string, bool) {
	match := looseYearPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, "", false
	}
	candidate, _ := strconv.Atoi("20" + match[1] + match[2])
	warning, ok := validateYear(candidate, now)
	return candidate, warning, ok
}

// validateYear accepts candidates within two years of the current year,
// with a soft warning at exactly two.
func validateYear(candidate int, now time.Time) (string, bool) {
	distance := abs(candidate - now.Year())
	if distance > 2 {
		return "", false
	}
	if distance == 2 {
		return fmt.Sprintf("detected year %d is 2 years from the current year %d", candidate, now.Year()), true
	}
	return "", true
}

// opensWithDecember reports whether a December date token appears within
// the first 500 characters of page text.
func opensWithDecember(text string) bool {
	head := text
	if len(head) > decemberHeadWindow {
		head = head[:decemberHeadWindow]
	}
	return decemberHeadPattern.MatchString(head)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
