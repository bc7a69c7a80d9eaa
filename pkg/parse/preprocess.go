// Package parse turns PDF-extracted bulletin page text into duty-pharmacy
// schedules. Each bulletin region has its own layout and therefore its own
// parsing strategy; all strategies share the tokenizing, date-resolution
// and assembly code in this package.
package parse

import (
	"strings"
	"unicode"
)

// NormalizeSpaces collapses every Unicode space variant (non-breaking
// space, the Unicode space separators, tabs) to a single ASCII space and
// trims the result. PDF text extraction emits inconsistent whitespace
// across exports, so all matching happens on normalized text.
func NormalizeSpaces(line string) string {
	var builder strings.Builder
	builder.Grow(len(line))
	lastWasSpace := false
	for _, r := range line {
		if unicode.IsSpace(r) || r == ' ' || r == ' ' || r == ' ' {
			if !lastWasSpace {
				builder.WriteByte(' ')
				lastWasSpace = true
			}
			continue
		}
		builder.WriteRune(r)
		lastWasSpace = false
	}
	return strings.TrimSpace(builder.String())
}

// SplitLines splits one page of extracted text into lines with normalized
// whitespace. Blank lines are preserved as empty strings: the columnar
// layout uses them as column separators.
func SplitLines(page string) []string {
	raw := strings.Split(strings.ReplaceAll(page, "\r\n", "\n"), "\n")
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = NormalizeSpaces(line)
	}
	return lines
}
