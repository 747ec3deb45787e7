package gedcom

import (
	"fmt"
	"slices"
	"strings"
)

var structuralTags = []string{TagHead, TagIndividual, TagFamily, TagSubmitter, TagTrailer}

// Report is the outcome of Validate.
type Report struct {
	Valid     bool     `json:"valid"`
	Issues    []string `json:"issues"`
	LineCount int      `json:"line_count"`
}

// Validate runs advisory structural checks over a finished document. Blank
// lines are skipped but still counted, so issue numbers match line numbers in
// the rendered text.
func Validate(lines []string) Report {
	issues := []string{}
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		n := i + 1
		if line[0] < '0' || line[0] > '9' {
			issues = append(issues, fmt.Sprintf("line %d: does not start with a level number", n))
			continue
		}
		if Level(line) != 0 {
			continue
		}
		if !hasStructuralTag(line) && !hasPointer(line) {
			issues = append(issues, fmt.Sprintf("line %d: level 0 line has no record tag or pointer", n))
		}
	}
	return Report{
		Valid:     len(issues) == 0,
		Issues:    issues,
		LineCount: len(lines),
	}
}

// hasStructuralTag reports whether any word of the line is a record tag, so
// "0 @I1@ INDI" and "0 FOO INDI" both pass.
func hasStructuralTag(line string) bool {
	for _, tok := range strings.Fields(line) {
		if slices.Contains(structuralTags, tok) {
			return true
		}
	}
	return false
}
