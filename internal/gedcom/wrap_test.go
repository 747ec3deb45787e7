package gedcom

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapShortText(t *testing.T) {
	assert.Equal(t, []string{"korte notitie"}, Wrap("korte notitie", 30))
	assert.Equal(t, []string{""}, Wrap("", 30))
}

func TestWrapLongText(t *testing.T) {
	text := strings.Repeat("woord ", 40)
	text = strings.TrimSpace(text)

	lines := Wrap(text, 30)
	require.Greater(t, len(lines), 1)
	for _, l := range lines {
		assert.LessOrEqual(t, utf8.RuneCountInString(l), 30)
	}
	assert.Equal(t, text, strings.Join(lines, " "))
}

func TestWrapCountsRunes(t *testing.T) {
	text := "één twee drie vier vijf zes zeven acht negen tien"
	for _, l := range Wrap(text, 12) {
		assert.LessOrEqual(t, utf8.RuneCountInString(l), 12, l)
	}
}

func TestWrapOverlongWord(t *testing.T) {
	long := strings.Repeat("x", 40)
	lines := Wrap("a "+long+" b", 30)
	assert.Equal(t, []string{"a", long, "b"}, lines)
}

func TestWrapField(t *testing.T) {
	lines := wrapField(1, "NOTE", "aaa bbb ccc ddd", 7)
	assert.Equal(t, []string{
		"1 NOTE aaa bbb",
		"2 CONT ccc ddd",
	}, lines)
}

func FuzzWrap(f *testing.F) {
	f.Add("een twee drie vier vijf zes zeven acht", 10)
	f.Add("kort", 30)
	f.Fuzz(func(t *testing.T, text string, width int) {
		if width < 1 || width > 300 || !utf8.ValidString(text) {
			t.Skip()
		}
		words := strings.Fields(text)
		normalized := strings.Join(words, " ")
		lines := Wrap(normalized, width)

		fits := true
		for _, w := range words {
			if utf8.RuneCountInString(w) > width {
				fits = false
			}
		}
		if fits {
			for _, l := range lines {
				if utf8.RuneCountInString(l) > width {
					t.Fatalf("line %q longer than %d", l, width)
				}
			}
		}
		if got := strings.Join(lines, " "); got != normalized {
			t.Fatalf("join = %q, want %q", got, normalized)
		}
	})
}
