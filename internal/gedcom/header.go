package gedcom

import (
	"strings"
	"time"
)

// Header defaults.
const (
	Version = "5.5.1"
	Form    = "LINEAGE-LINKED"
	Charset = "UTF-8"
)

// Header profile names.
const (
	ProfileFull    = "full"
	ProfileMinimal = "minimal"
)

// HeaderConfig describes the HEAD record. Empty optional fields are left out.
type HeaderConfig struct {
	SourceID      string // 1 SOUR, required
	SourceName    string // 2 NAME
	SourceVersion string // 2 VERS
	Corporation   string // 2 CORP
	Destination   string // 1 DEST
	IncludeTime   bool   // 2 TIME under DATE
	SubmitterName string // 1 SUBM plus a SUBM record
	FileName      string // 1 FILE
	GEDCOMVersion string // 2 VERS under GEDC
	Form          string // 2 FORM under GEDC
	Charset       string // 1 CHAR
	Language      string // 1 LANG
}

// HeaderProfile returns one of the built-in header layouts. Unknown names
// fall back to the full profile.
func HeaderProfile(name string) HeaderConfig {
	if strings.EqualFold(name, ProfileMinimal) {
		return HeaderConfig{
			SourceID:      "FAMILY_WIKI",
			GEDCOMVersion: Version,
			Form:          Form,
			Charset:       Charset,
			Language:      "English",
		}
	}
	return HeaderConfig{
		SourceID:      "FAMILY_WIKI",
		SourceName:    "Family Wiki",
		SourceVersion: "1.0",
		Corporation:   "Family Wiki",
		Destination:   "ANY",
		IncludeTime:   true,
		SubmitterName: "Family Wiki",
		GEDCOMVersion: Version,
		Form:          Form,
		Charset:       Charset,
		Language:      "Dutch",
	}
}

const submitterXRef = "SUBM1"

func (h HeaderConfig) lines(now time.Time) []string {
	out := []string{formatLine(0, TagHead, "")}
	add := func(level int, tag, value string) {
		if value != "" {
			out = append(out, formatLine(level, tag, value))
		}
	}

	sourceID := h.SourceID
	if sourceID == "" {
		sourceID = "FAMILY_WIKI"
	}
	add(1, "SOUR", sourceID)
	add(2, "NAME", h.SourceName)
	add(2, "VERS", h.SourceVersion)
	add(2, "CORP", h.Corporation)
	add(1, "DEST", h.Destination)
	add(1, "DATE", strings.ToUpper(now.Format("02 Jan 2006")))
	if h.IncludeTime {
		add(2, "TIME", now.Format("15:04:05"))
	}
	if h.SubmitterName != "" {
		add(1, TagSubmitter, Pointer(submitterXRef))
	}
	add(1, "FILE", h.FileName)

	out = append(out, formatLine(1, "GEDC", ""))
	add(2, "VERS", firstNonEmpty(h.GEDCOMVersion, Version))
	add(2, "FORM", firstNonEmpty(h.Form, Form))
	add(1, "CHAR", firstNonEmpty(h.Charset, Charset))
	add(1, "LANG", h.Language)
	return out
}

// submitterLines renders the SUBM record the header points at, if any.
func (h HeaderConfig) submitterLines() []string {
	if h.SubmitterName == "" {
		return nil
	}
	return []string{
		"0 " + Pointer(submitterXRef) + " " + TagSubmitter,
		formatLine(1, "NAME", h.SubmitterName),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
