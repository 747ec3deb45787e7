package gedcom

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/evz/family-wiki-sub001/internal/dutch"
	"github.com/evz/family-wiki-sub001/internal/models"
)

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithHeader sets the HEAD layout.
func WithHeader(h HeaderConfig) EncoderOption {
	return func(e *Encoder) { e.header = h }
}

// WithNoteWidth sets the wrap width for NOTE values.
func WithNoteWidth(n int) EncoderOption {
	return func(e *Encoder) {
		if n > 0 {
			e.noteWidth = n
		}
	}
}

// WithClock overrides the generation timestamp source.
func WithClock(now func() time.Time) EncoderOption {
	return func(e *Encoder) {
		if now != nil {
			e.now = now
		}
	}
}

// Encoder renders records as GEDCOM lines. It numbers individuals @I0001@,
// @I0002@, ... and families @F0001@, ... in the order they are formatted, and
// the counters keep running across calls. An Encoder must not be used from
// more than one goroutine at a time.
type Encoder struct {
	header    HeaderConfig
	noteWidth int
	now       func() time.Time

	nextIndividual int
	nextFamily     int
	// assigned maps an individual's own ID to the xref it was written under,
	// so family links follow the renumbering.
	assigned map[string]string
}

// NewEncoder returns an Encoder using the full header profile.
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{
		header:         HeaderProfile(ProfileFull),
		noteWidth:      DefaultNoteWidth,
		now:            time.Now,
		nextIndividual: 1,
		nextFamily:     1,
		assigned:       make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FormatHeader renders the HEAD record and, when configured, the submitter
// record.
func (e *Encoder) FormatHeader() []string {
	return append(e.header.lines(e.now()), e.header.submitterLines()...)
}

// FormatTrailer renders the TRLR record.
func (e *Encoder) FormatTrailer() []string {
	return []string{formatLine(0, TagTrailer, "")}
}

// FormatIndividual renders one INDI record under the next individual xref.
func (e *Encoder) FormatIndividual(p models.Individual) []string {
	xref := fmt.Sprintf("I%04d", e.nextIndividual)
	e.nextIndividual++
	if p.ID != "" {
		e.assigned[p.ID] = xref
	}

	out := []string{"0 " + Pointer(xref) + " " + TagIndividual}

	given := strings.TrimSpace(p.GivenNames)
	particle := strings.TrimSpace(p.Particle)
	surname := strings.TrimSpace(p.Surname)
	if given != "" || surname != "" {
		out = append(out, formatLine(1, "NAME", formatName(given, particle, surname)))
		if given != "" {
			out = append(out, formatLine(2, "GIVN", given))
		}
		if surname != "" {
			out = append(out, formatLine(2, "SURN", surname))
		}
		if particle != "" {
			out = append(out, formatLine(2, "NPFX", particle))
		}
	}

	sex := p.Sex
	if sex == models.SexUnknown {
		sex = models.SexFromGender(dutch.DetectGender(given))
	}
	if sex != models.SexUnknown {
		out = append(out, formatLine(1, "SEX", string(sex)))
	}

	out = append(out, formatEvent("BIRT", p.Birth)...)
	out = append(out, formatEvent("BAPM", p.Baptism)...)
	out = append(out, formatEvent("DEAT", p.Death)...)

	for _, occ := range p.Occupations {
		if occ = strings.TrimSpace(occ); occ != "" {
			out = append(out, formatLine(1, "OCCU", occ))
		}
	}

	if note := strings.TrimSpace(p.Notes); note != "" {
		out = append(out, wrapField(1, "NOTE", note, e.noteWidth)...)
	}
	return out
}

// FormatFamily renders one FAM record under the next family xref. Parent and
// child references naming an individual already formatted by this Encoder
// are rewritten to that individual's xref; other references are kept.
func (e *Encoder) FormatFamily(f models.Family) []string {
	xref := fmt.Sprintf("F%04d", e.nextFamily)
	e.nextFamily++

	out := []string{"0 " + Pointer(xref) + " " + TagFamily}
	if f.Father != "" {
		out = append(out, formatLine(1, "HUSB", e.ref(f.Father)))
	}
	if f.Mother != "" {
		out = append(out, formatLine(1, "WIFE", e.ref(f.Mother)))
	}
	for _, c := range f.Children {
		if c != "" {
			out = append(out, formatLine(1, "CHIL", e.ref(c)))
		}
	}

	if f.Marriage != nil {
		out = append(out, formatLine(1, "MARR", ""))
		out = append(out, eventDetail(*f.Marriage)...)
	}
	if d := strings.TrimSpace(f.Divorce); d != "" {
		out = append(out, formatLine(1, "DIV", ""), formatLine(2, "DATE", d))
	}
	if note := strings.TrimSpace(f.Notes); note != "" {
		out = append(out, wrapField(1, "NOTE", note, e.noteWidth)...)
	}
	return out
}

// Encode renders a complete document: header, individuals, families and
// trailer, with a blank line between records.
func (e *Encoder) Encode(individuals []models.Individual, families []models.Family) []string {
	blocks := [][]string{e.FormatHeader()}
	for _, p := range individuals {
		blocks = append(blocks, e.FormatIndividual(p))
	}
	for _, f := range families {
		blocks = append(blocks, e.FormatFamily(f))
	}
	blocks = append(blocks, e.FormatTrailer())

	var out []string
	for i, b := range blocks {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, b...)
	}
	return out
}

// Render joins lines with newlines.
func Render(lines []string) string {
	return strings.Join(lines, "\n")
}

func (e *Encoder) ref(id string) string {
	if inner, ok := ExtractPointer(id); ok {
		id = inner
	}
	if x, ok := e.assigned[id]; ok {
		return Pointer(x)
	}
	return Pointer(id)
}

func formatName(given, particle, surname string) string {
	sur := strings.TrimSpace(particle + " " + surname)
	if given == "" {
		return "/" + sur + "/"
	}
	return given + " /" + sur + "/"
}

func formatEvent(tag string, ev models.Event) []string {
	detail := eventDetail(ev)
	if len(detail) == 0 {
		return nil
	}
	return append([]string{formatLine(1, tag, "")}, detail...)
}

func eventDetail(ev models.Event) []string {
	var out []string
	if d := strings.TrimSpace(ev.Date); d != "" {
		out = append(out, formatLine(2, "DATE", d))
	}
	if p := strings.TrimSpace(ev.Place); p != "" {
		out = append(out, formatLine(2, "PLAC", p))
	}
	return out
}

func formatLine(level int, tag, value string) string {
	s := strconv.Itoa(level) + " " + tag
	if value != "" {
		s += " " + value
	}
	return s
}
