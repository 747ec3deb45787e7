package gedcom

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/evz/family-wiki-sub001/internal/dutch"
	"github.com/evz/family-wiki-sub001/internal/models"
)

const utf8BOM = "\ufeff"

// maxLineBytes caps a single input line; real files stay far below it.
const maxLineBytes = 1 << 20

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithLogger sets the logger used for skipped-record diagnostics.
func WithLogger(l *slog.Logger) DecoderOption {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// Decoder turns GEDCOM text into individuals and families. It holds no
// per-call state and may be shared between goroutines.
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder returns a Decoder. Without WithLogger it logs nothing.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecodeFile reads and decodes the file at path. A missing file yields an
// error matching fs.ErrNotExist.
func (d *Decoder) DecodeFile(path string) (*models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gedcom: open %s: %w", path, err)
	}
	defer f.Close()
	return d.Decode(f)
}

// Decode reads UTF-8 GEDCOM text from r. Blank lines are ignored.
func (d *Decoder) Decode(r io.Reader) (*models.Document, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, utf8BOM)
			first = false
		}
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("gedcom: read: %w", err)
	}
	return d.DecodeLines(lines), nil
}

// DecodeLines decodes non-empty, trimmed lines.
func (d *Decoder) DecodeLines(lines []string) *models.Document {
	return d.DecodeRecords(Split(lines))
}

// DecodeRecords decodes INDI and FAM records and skips every other kind.
func (d *Decoder) DecodeRecords(records []Record) *models.Document {
	doc := &models.Document{}
	for _, rec := range records {
		hdr := rec.Header()
		switch hdr.Tag {
		case TagIndividual:
			doc.Individuals = append(doc.Individuals, decodeIndividual(hdr.XRef, rec.Lines()[1:]))
		case TagFamily:
			doc.Families = append(doc.Families, decodeFamily(hdr.XRef, rec.Lines()[1:]))
		case TagHead, TagTrailer, TagSubmitter:
		default:
			d.logger.Debug("gedcom: skipping record",
				slog.String("tag", hdr.Tag),
				slog.String("xref", hdr.XRef),
				slog.Int("lines", len(rec)))
		}
	}
	return doc
}

func decodeIndividual(id string, lines []Line) models.Individual {
	p := models.Individual{ID: id}
	var notes noteBuilder

	for i := 0; i < len(lines); i++ {
		l := lines[i]
		if l.Level != 1 {
			continue
		}
		switch l.Tag {
		case "NAME":
			p.SetName(l.Value)
		case "SEX":
			p.Sex = models.ParseSex(l.Value)
		case "BIRT":
			p.Birth, i = decodeEvent(lines, i)
		case "BAPM", "CHR":
			p.Baptism, i = decodeEvent(lines, i)
		case "DEAT":
			p.Death, i = decodeEvent(lines, i)
		case "OCCU":
			p.AddOccupation(l.Value)
		case "NOTE":
			i = notes.add(lines, i)
		}
	}
	p.Notes = notes.String()
	return p
}

func decodeFamily(id string, lines []Line) models.Family {
	f := models.Family{ID: id}
	var notes noteBuilder

	for i := 0; i < len(lines); i++ {
		l := lines[i]
		if l.Level != 1 {
			continue
		}
		switch l.Tag {
		case "HUSB":
			f.Father, _ = ExtractPointer(l.Value)
		case "WIFE":
			f.Mother, _ = ExtractPointer(l.Value)
		case "CHIL":
			if child, ok := ExtractPointer(l.Value); ok {
				f.Children = append(f.Children, child)
			}
		case "MARR":
			var ev models.Event
			ev, i = decodeEvent(lines, i)
			f.Marriage = &ev
		case "DIV":
			var ev models.Event
			ev, i = decodeEvent(lines, i)
			f.Divorce = ev.Date
		case "NOTE":
			i = notes.add(lines, i)
		}
	}
	f.Notes = notes.String()
	return f
}

// decodeEvent consumes the sub-block of the level-1 line at start and
// returns the event together with the index of its last line.
func decodeEvent(lines []Line, start int) (models.Event, int) {
	var ev models.Event
	i := start + 1
	for ; i < len(lines) && lines[i].Level >= 2; i++ {
		switch lines[i].Tag {
		case "DATE":
			ev.Date = dutch.ParseDate(lines[i].Value)
		case "PLAC":
			ev.Place = strings.TrimSpace(lines[i].Value)
		}
	}
	return ev, i - 1
}

// noteBuilder accumulates NOTE values. Separate NOTE lines and CONT lines are
// joined with one space, so the original line breaks and repeated spaces are
// not recovered. CONC lines are appended without a separator.
type noteBuilder struct {
	sb strings.Builder
}

func (n *noteBuilder) add(lines []Line, start int) int {
	n.appendSpaced(lines[start].Value)
	i := start + 1
	for ; i < len(lines) && lines[i].Level >= 2; i++ {
		switch lines[i].Tag {
		case "CONT":
			n.appendSpaced(lines[i].Value)
		case "CONC":
			n.sb.WriteString(lines[i].Value)
		}
	}
	return i - 1
}

func (n *noteBuilder) appendSpaced(s string) {
	if s == "" {
		return
	}
	if n.sb.Len() > 0 {
		n.sb.WriteByte(' ')
	}
	n.sb.WriteString(s)
}

func (n *noteBuilder) String() string {
	return n.sb.String()
}
