package gedcom

import (
	"strings"
	"unicode/utf8"
)

// Note width bounds accepted by the configuration layer.
const (
	MinNoteWidth     = 30
	MaxNoteWidth     = 250
	DefaultNoteWidth = 200
)

// Wrap splits text into lines of at most maxLength runes by packing
// whitespace-separated words greedily. Words are never split, so a word
// longer than maxLength ends up alone on an over-long line. Text that already
// fits is returned unchanged as a single line.
func Wrap(text string, maxLength int) []string {
	if utf8.RuneCountInString(text) <= maxLength {
		return []string{text}
	}

	var (
		out    []string
		cur    strings.Builder
		curLen int
	)
	for _, w := range strings.Fields(text) {
		wl := utf8.RuneCountInString(w)
		if curLen > 0 && curLen+1+wl > maxLength {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += wl
	}
	if curLen > 0 {
		out = append(out, cur.String())
	}
	return out
}

// wrapField renders a possibly long value as "<level> <tag> first" followed by
// "<level+1> CONT rest" lines.
func wrapField(level int, tag, text string, maxLength int) []string {
	parts := Wrap(text, maxLength)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i == 0 {
			out = append(out, formatLine(level, tag, p))
			continue
		}
		out = append(out, formatLine(level+1, "CONT", p))
	}
	return out
}
