package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

var (
	// dayMonthPattern matches regular "dd-mmm" bulletin date tokens. The
	// separator may be an ASCII hyphen or the Unicode hyphen (U+2010) some
	// PDF exports produce.
	dayMonthPattern = regexp.MustCompile(`(?i)\b(\d{1,2})[-‐](ene|feb|mar|abr|may|jun|jul|ago|sep|oct|nov|dic)\b`)

	// datedDayMonthPattern matches the rural bulletin's "dd-mmm-yy" tokens,
	// which carry a 2-digit year.
	datedDayMonthPattern = regexp.MustCompile(`(?i)\b(\d{1,2})[-‐](ene|feb|mar|abr|may|jun|jul|ago|sep|oct|nov|dic)[-‐](\d{2})\b`)

	// transitionPattern matches the El Espinar bulletin's transition
	// sentences at the August→September boundary, e.g.
	// "DOMINGO 31 DE AGOSTO Y LUNES 1 DE SEPTIEMBRE". Only those two
	// months ever appear in this form.
	transitionPattern = regexp.MustCompile(`(?i)\b(lunes|martes|miércoles|miercoles|jueves|viernes|sábado|sabado|domingo)\s+(\d{1,2})\s+de\s+(agosto|septiembre)\b`)
)

// DateToken is one date mention found on a line, reduced to the internal
// "dd-mmm" representation. Weekday is set only when the source names one
// (transition sentences and the capital layout do; regular tokens do not).
type DateToken struct {
	Weekday     string
	Day         int
	MonthAbbrev string
}

// Token formats the token back to "dd-mmm" with the day zero-padded.
func (t DateToken) Token() string {
	day := strconv.Itoa(t.Day)
	if t.Day < 10 {
		day = "0" + day
	}
	return day + "-" + t.MonthAbbrev
}

// DatedToken is a rural "dd-mmm-yy" token before year expansion.
type DatedToken struct {
	DateToken
	YY int
}

// ExtractDayMonths returns all regular "dd-mmm" tokens on a line, in text
// order. Tokens that also carry a 2-digit year are excluded; those belong
// to ExtractDatedDayMonths.
func ExtractDayMonths(line string) []DateToken {
	var tokens []DateToken
	matches := dayMonthPattern.FindAllStringSubmatchIndex(line, -1)
	for _, m := range matches {
		// Skip "dd-mmm-yy": the regular pattern also matches its prefix.
		rest := line[m[1]:]
		if len(rest) >= 3 && (rest[0] == '-' || strings.HasPrefix(rest, "‐")) {
			if r := strings.TrimPrefix(strings.TrimPrefix(rest, "-"), "‐"); len(r) >= 2 && isDigit(r[0]) && isDigit(r[1]) {
				continue
			}
		}
		day, _ := strconv.Atoi(line[m[2]:m[3]])
		tokens = append(tokens, DateToken{
			Day:         day,
			MonthAbbrev: strings.ToLower(line[m[4]:m[5]]),
		})
	}
	return tokens
}

// ExtractDatedDayMonths returns all "dd-mmm-yy" tokens on a line, in text
// order.
func ExtractDatedDayMonths(line string) []DatedToken {
	var tokens []DatedToken
	for _, m := range datedDayMonthPattern.FindAllStringSubmatch(line, -1) {
		day, _ := strconv.Atoi(m[1])
		yy, _ := strconv.Atoi(m[3])
		tokens = append(tokens, DatedToken{
			DateToken: DateToken{Day: day, MonthAbbrev: strings.ToLower(m[2])},
			YY:        yy,
		})
	}
	return tokens
}

// ExtractTransitionDates returns the date mentions of a transition
// sentence, translated to the same "dd-mmm" token form as regular dates so
// both kinds can be merged for a line.
func ExtractTransitionDates(line string) []DateToken {
	var tokens []DateToken
	for _, m := range transitionPattern.FindAllStringSubmatch(line, -1) {
		day, _ := strconv.Atoi(m[2])
		month := strings.ToLower(m[3])
		tokens = append(tokens, DateToken{
			Weekday:     strings.ToLower(m[1]),
			Day:         day,
			MonthAbbrev: schedule.AbbrevForMonth(month),
		})
	}
	return tokens
}

// ResolveDate converts a token plus a resolved year into a DutyDate.
func ResolveDate(token DateToken, year int) schedule.DutyDate {
	month, ok := schedule.MonthFromAbbrev(token.MonthAbbrev)
	if !ok {
		month = token.MonthAbbrev
	}
	return schedule.DutyDate{
		DayOfWeek: token.Weekday,
		Day:       token.Day,
		Month:     month,
		Year:      year,
	}
}

// ExpandTwoDigitYear expands a 2-digit year suffix against a detected base
// year. A suffix equal to the base year's last two digits keeps the base
// year; a smaller suffix moves backwards, a larger one forwards. Rural
// bulletins spanning a Dec→Jan boundary carry suffixes that differ by one
// across adjacent lines, which this handles symmetrically.
func ExpandTwoDigitYear(yy, baseYear int) int {
	baseTail := baseYear % 100
	switch {
	case yy == baseTail:
		return baseYear
	case yy < baseTail:
		return baseYear - (baseTail - yy)
	default:
		return baseYear + (yy - baseTail)
	}
}

// YearTracker is the running-year accumulator for the counter-based
// strategies. It is a value threaded through the line fold, not a mutable
// field: every Observe returns the successor state.
type YearTracker struct {
	year int
}

// NewYearTracker seeds the tracker with a strategy-specific start year.
func NewYearTracker(seed int) YearTracker {
	return YearTracker{year: seed}
}

// Year returns the tracker's current year.
func (t YearTracker) Year() int {
	return t.year
}

// Observe advances the tracker past one date token and returns the year
// that token resolves to. Each "01-ene" token increments the running year
// exactly once; the January 1 date itself already belongs to the new year.
func (t YearTracker) Observe(token DateToken) (YearTracker, int) {
	if token.Day == 1 && token.MonthAbbrev == "ene" {
		t.year++
	}
	return t, t.year
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
