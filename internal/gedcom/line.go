// Package gedcom reads and writes the subset of GEDCOM 5.5.1 used for
// person, family and event data.
//
// Decoding is tolerant: malformed level numbers fall back to level 0 and
// unknown tags are skipped. Encoding is total over any Individual or Family
// value.
package gedcom

import (
	"regexp"
	"strconv"
	"strings"
)

// Record type tags.
const (
	TagHead       = "HEAD"
	TagIndividual = "INDI"
	TagFamily     = "FAM"
	TagSubmitter  = "SUBM"
	TagTrailer    = "TRLR"
)

var pointerRe = regexp.MustCompile(`@([^@\s]+)@`)

// Line is one parsed GEDCOM line.
type Line struct {
	Level int
	XRef  string
	Tag   string
	Value string
}

// ParseLine splits a raw line into level, optional cross-reference, tag and
// value. A missing or non-numeric level is read as 0 and the whole line is
// then treated as "tag value".
func ParseLine(raw string) Line {
	s := strings.TrimSpace(raw)

	var l Line
	levelTok, rest, _ := strings.Cut(s, " ")
	if n, err := strconv.Atoi(levelTok); err == nil && n >= 0 {
		l.Level = n
		s = strings.TrimLeft(rest, " ")
	}

	if strings.HasPrefix(s, "@") {
		tok, rest, _ := strings.Cut(s, " ")
		if m := pointerRe.FindStringSubmatch(tok); m != nil && m[0] == tok {
			l.XRef = m[1]
			s = strings.TrimLeft(rest, " ")
		}
	}

	l.Tag, l.Value, _ = strings.Cut(s, " ")
	return l
}

// Level returns the leading level number of a raw line, or 0 when there is
// none.
func Level(raw string) int {
	tok, _, _ := strings.Cut(strings.TrimSpace(raw), " ")
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ExtractPointer returns the identifier inside the first @id@ of value.
func ExtractPointer(value string) (string, bool) {
	m := pointerRe.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Pointer wraps id in @ delimiters. Values that already are pointers are
// returned unchanged.
func Pointer(id string) string {
	if inner, ok := ExtractPointer(id); ok {
		return "@" + inner + "@"
	}
	return "@" + id + "@"
}

func hasPointer(s string) bool {
	return pointerRe.MatchString(s)
}
