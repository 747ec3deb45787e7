package gedcom

import "strings"

// Record is a level-0 line together with all lines nested under it, in
// their original raw form.
type Record []string

// Header returns the parsed level-0 line.
func (r Record) Header() Line {
	if len(r) == 0 {
		return Line{}
	}
	return ParseLine(r[0])
}

// Lines parses every line of the record.
func (r Record) Lines() []Line {
	out := make([]Line, len(r))
	for i, raw := range r {
		out[i] = ParseLine(raw)
	}
	return out
}

// Split groups lines into records, starting a new record at every level-0
// line. It never fails: a line without a readable level counts as level 0.
func Split(lines []string) []Record {
	var (
		records []Record
		acc     Record
	)
	for _, line := range lines {
		if Level(line) == 0 && len(acc) > 0 {
			records = append(records, acc)
			acc = nil
		}
		acc = append(acc, line)
	}
	if len(acc) > 0 {
		records = append(records, acc)
	}
	return records
}

// Flatten concatenates records back into a line sequence.
func Flatten(records []Record) []string {
	var out []string
	for _, r := range records {
		out = append(out, r...)
	}
	return out
}

// SplitText turns a file's contents into lines for Validate. A leading UTF-8
// BOM is dropped, CRLF endings become LF and one trailing newline is ignored.
func SplitText(data []byte) []string {
	text := strings.TrimPrefix(string(data), utf8BOM)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
