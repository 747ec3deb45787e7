// Package models defines the genealogy record types shared by the codec,
// the index and the API.
package models

import (
	"strings"

	"github.com/evz/family-wiki-sub001/internal/dutch"
)

// Sex is the GEDCOM SEX value of an individual.
type Sex string

const (
	SexUnknown Sex = ""
	SexMale    Sex = "M"
	SexFemale  Sex = "F"
)

// ParseSex maps common spellings to a Sex. Anything unrecognized is unknown.
func ParseSex(s string) Sex {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "man", "mannelijk":
		return SexMale
	case "f", "female", "v", "vrouw", "vrouwelijk":
		return SexFemale
	default:
		return SexUnknown
	}
}

// SexFromGender converts a detected gender.
func SexFromGender(g dutch.Gender) Sex {
	switch g {
	case dutch.Male:
		return SexMale
	case dutch.Female:
		return SexFemale
	default:
		return SexUnknown
	}
}

// Event is a dated, placed life event such as a birth or marriage.
type Event struct {
	Date  string `json:"date,omitempty"`
	Place string `json:"place,omitempty"`
}

// IsZero reports whether both date and place are empty.
func (e Event) IsZero() bool {
	return e.Date == "" && e.Place == ""
}

// Individual is one person record.
type Individual struct {
	ID          string   `json:"id,omitempty"`
	GivenNames  string   `json:"given_names,omitempty"`
	Particle    string   `json:"particle,omitempty"`
	Surname     string   `json:"surname,omitempty"`
	Sex         Sex      `json:"sex,omitempty"`
	Birth       Event    `json:"birth"`
	Baptism     Event    `json:"baptism"`
	Death       Event    `json:"death"`
	Occupations []string `json:"occupations,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	// Confidence records how sure the extraction was, 0.0 to 1.0. It is never
	// written to GEDCOM.
	Confidence float64 `json:"confidence,omitempty"`
}

// DisplayName renders the name as "given particle surname".
func (i Individual) DisplayName() string {
	return joinNonEmpty(i.GivenNames, i.Particle, i.Surname)
}

// SetName replaces the name parts with those parsed from full.
func (i *Individual) SetName(full string) {
	i.GivenNames, i.Particle, i.Surname = dutch.ParseName(full)
}

// AddOccupation appends occ unless it is blank.
func (i *Individual) AddOccupation(occ string) {
	if occ = strings.TrimSpace(occ); occ != "" {
		i.Occupations = append(i.Occupations, occ)
	}
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
