package dutch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxDateLength bounds passthrough values. GEDCOM treats the date field
// length as advisory, so longer free text is cut rather than rejected.
const maxDateLength = 20

// monthNumbers maps full and abbreviated Dutch month names to 1..12.
var monthNumbers = map[string]int{
	"januari": 1, "jan": 1,
	"februari": 2, "feb": 2,
	"maart": 3, "mrt": 3, "maa": 3,
	"april": 4, "apr": 4,
	"mei": 5,
	"juni": 6, "jun": 6,
	"juli": 7, "jul": 7,
	"augustus": 8, "aug": 8,
	"september": 9, "sep": 9, "sept": 9,
	"oktober": 10, "okt": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

// gedcomMonths holds the English month codes GEDCOM dates use.
var gedcomMonths = [...]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

const monthAlternation = `januari|februari|maart|april|mei|juni|juli|augustus|september|oktober|november|december|` +
	`jan|feb|mrt|maa|apr|jun|jul|aug|sept|sep|okt|nov|dec`

var (
	// dutchDateRe matches "1 januari 1800" and "01 okt. 1850".
	dutchDateRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(` + monthAlternation + `)\.?\s+(\d{4})\b`)

	numericDateRe = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)

	yearOnlyRe = regexp.MustCompile(`^\d{4}$`)

	// anyDateRe finds every supported date shape in running text. The
	// alternation order makes a year inside a longer date part of that match.
	anyDateRe = regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:` + monthAlternation + `)\.?\s+\d{4}\b` +
		`|\b\d{1,2}\.\d{1,2}\.\d{4}\b` +
		`|\b\d{4}-\d{2}-\d{2}\b` +
		`|\b\d{4}\b`)
)

// ParseDate normalizes a Dutch date to GEDCOM "DD MON YYYY". A bare year is
// returned as is; anything unrecognized is passed through, cut to 20 runes.
func ParseDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if m := dutchDateRe.FindStringSubmatch(s); m != nil {
		month := monthNumbers[strings.ToLower(m[2])]
		if out, ok := formatDate(m[1], month, m[3]); ok {
			return out
		}
	}

	if m := numericDateRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[2])
		if out, ok := formatDate(m[1], month, m[3]); ok {
			return out
		}
	}

	if yearOnlyRe.MatchString(s) {
		return s
	}

	return truncateRunes(s, maxDateLength)
}

func formatDate(day string, month int, year string) (string, bool) {
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 || month < 1 || month > 12 {
		return "", false
	}
	return fmt.Sprintf("%02d %s %s", d, gedcomMonths[month-1], year), true
}

// ExtractDates returns every date-like substring of text in order of
// occurrence. Matches are not parsed and duplicates are kept.
func ExtractDates(text string) []string {
	return anyDateRe.FindAllString(text, -1)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
