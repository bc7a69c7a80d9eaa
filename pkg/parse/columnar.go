package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

// columnarStrategy handles the Segovia capital bulletin, a multi-column
// table of one row per day with separate day-shift and night-shift
// pharmacy columns. The extracted text interleaves the columns, so pages
// are re-read in fixed-size vertical bands: a band is accepted as a row
// when it holds a recognizable Spanish weekday-date string and at least
// three descriptive lines for each column; otherwise it is noise and the
// scan advances by a smaller step to retry.
type columnarStrategy struct {
	location schedule.LocationID
	log      *zap.Logger
	now      func() time.Time
}

const (
	// capitalBandSize is the vertical band height, in lines.
	capitalBandSize = 12
	// capitalRetryStep is how far the scan advances after rejecting a band.
	capitalRetryStep = 3
	// minColumnLines is the acceptance threshold per column. A genuine row
	// always carries at least name, address and phone for each shift.
	minColumnLines = 3
)

// weekdayDatePattern recognizes the capital bulletin's full date lines,
// e.g. "viernes, 14 de marzo de 2025". The trailing year is optional: a
// few re-issues omit it, and sorting substitutes the current year then.
var weekdayDatePattern = regexp.MustCompile(`(?i)^(lunes|martes|miércoles|miercoles|jueves|viernes|sábado|sabado|domingo),?\s+(\d{1,2})\s+de\s+(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)(?:\s+de\s+(\d{4}))?$`)

var phoneDigitsPattern = regexp.MustCompile(`\d[\d\s]{5,}\d`)

func newColumnarStrategy(opts Options) *columnarStrategy {
	return &columnarStrategy{
		location: schedule.LocationID(schedule.RegionSegoviaCapital),
		log:      opts.logger(),
		now:      opts.now(),
	}
}

func (s *columnarStrategy) Region() schedule.RegionID {
	return schedule.RegionSegoviaCapital
}

func (s *columnarStrategy) Locations() []schedule.LocationID {
	return []schedule.LocationID{s.location}
}

func (s *columnarStrategy) Parse(pages []string, sourceURL string) (*Result, error) {
	if documentIsEmpty(pages) {
		return nil, ErrEmptyDocument
	}

	result := newResult()
	asm := newAssembler()

	for pageIndex, page := range pages {
		lines := SplitLines(page)
		dates, dayBlocks, nightBlocks := s.collectRows(lines)
		if len(dates) == 0 {
			if strings.TrimSpace(page) != "" {
				result.warnf("page %d: no day/night rows recognized", pageIndex+1)
			}
			continue
		}

		// Rows are zipped positionally: the Nth date belongs to the Nth
		// day block and the Nth night block.
		for i, date := range dates {
			asm.add(fact{
				location:   s.location,
				date:       date,
				span:       schedule.SpanCapitalDay,
				pharmacies: []schedule.Pharmacy{pharmacyFromBlock(dayBlocks[i])},
			})
			asm.add(fact{
				location:   s.location,
				date:       date,
				span:       schedule.SpanCapitalNight,
				pharmacies: []schedule.Pharmacy{pharmacyFromBlock(nightBlocks[i])},
			})
		}
	}

	result.Schedules = asm.result(s.now().Year())
	return result, nil
}

// collectRows reorganizes a page into three parallel sequences of equal
// length: dates, day-column blocks and night-column blocks.
func (s *columnarStrategy) collectRows(lines []string) ([]schedule.DutyDate, [][]string, [][]string) {
	var dates []schedule.DutyDate
	var dayBlocks, nightBlocks [][]string

	i := 0
	for i < len(lines) {
		end := i + capitalBandSize
		if end > len(lines) {
			end = len(lines)
		}
		band := lines[i:end]

		dateIndex := -1
		for j, line := range band {
			if weekdayDatePattern.MatchString(line) {
				dateIndex = j
				break
			}
		}
		if dateIndex < 0 {
			// No date anywhere in the band; nothing here can be a row.
			i = end
			continue
		}

		day, night := splitColumns(band[dateIndex+1:])
		if len(day) < minColumnLines || len(night) < minColumnLines {
			s.log.Debug("band rejected, retrying at smaller offset",
				zap.Int("offset", i),
				zap.Int("day_lines", len(day)),
				zap.Int("night_lines", len(night)))
			i += capitalRetryStep
			continue
		}

		dates = append(dates, parseWeekdayDate(band[dateIndex]))
		dayBlocks = append(dayBlocks, day)
		nightBlocks = append(nightBlocks, night)
		i = end
	}

	return dates, dayBlocks, nightBlocks
}

// splitColumns separates a band's remainder into the day and night blocks.
// The columns arrive as consecutive line runs separated by a blank line;
// a following weekday-date line means the next row leaked into the band
// and ends both columns.
func splitColumns(rest []string) (day, night []string) {
	inNight := false
	for _, line := range rest {
		if weekdayDatePattern.MatchString(line) {
			break
		}
		if isColumnHeader(line) {
			continue
		}
		if line == "" {
			if !inNight && len(day) > 0 {
				inNight = true
			} else if len(night) > 0 {
				break
			}
			continue
		}
		if inNight {
			night = append(night, line)
		} else {
			day = append(day, line)
		}
	}
	return day, night
}

// isColumnHeader matches the repeated column captions some re-issues print
// inside every row.
func isColumnHeader(line string) bool {
	switch strings.ToUpper(line) {
	case "DÍA", "DIA", "NOCHE", "SERVICIO DIURNO", "SERVICIO NOCTURNO":
		return true
	}
	return false
}

func parseWeekdayDate(line string) schedule.DutyDate {
	match := weekdayDatePattern.FindStringSubmatch(line)
	day, _ := strconv.Atoi(match[2])
	date := schedule.DutyDate{
		DayOfWeek: strings.ToLower(match[1]),
		Day:       day,
		Month:     strings.ToLower(match[3]),
	}
	if match[4] != "" {
		date.Year, _ = strconv.Atoi(match[4])
	}
	return date
}

// pharmacyFromBlock reads one column block as a pharmacy description:
// name first, address second, then a phone line when one carries enough
// digits; anything left over becomes additional info.
func pharmacyFromBlock(block []string) schedule.Pharmacy {
	pharmacy := schedule.Pharmacy{Name: block[0]}
	if len(block) > 1 {
		pharmacy.Address = block[1]
	}

	var extra []string
	for _, line := range block[2:] {
		if pharmacy.Phone == "" && phoneDigitsPattern.MatchString(line) {
			pharmacy.Phone = line
			continue
		}
		extra = append(extra, line)
	}
	pharmacy.AdditionalInfo = strings.Join(extra, "; ")
	return pharmacy
}
