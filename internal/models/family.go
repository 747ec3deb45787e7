package models

import "time"

// Family links parents and children.
//
// Marriage is nil when the record declares no marriage at all; a non-nil
// zero Event means a marriage was declared without date or place.
type Family struct {
	ID       string   `json:"id,omitempty"`
	Father   string   `json:"father,omitempty"`
	Mother   string   `json:"mother,omitempty"`
	Children []string `json:"children,omitempty"`
	Marriage *Event   `json:"marriage,omitempty"`
	Divorce  string   `json:"divorce,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// HasMarriage reports whether the family declares a marriage.
func (f Family) HasMarriage() bool {
	return f.Marriage != nil
}

// Document is the decoded content of one GEDCOM file.
type Document struct {
	Individuals []Individual `json:"individuals"`
	Families    []Family     `json:"families"`
}

// SourceMetadata describes a stored .ged file.
type SourceMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
