// Package extraction loads person and family data produced by the text
// extraction step and turns it into GEDCOM-ready records.
//
// Input is JSON or YAML: either a top-level list of persons or an object with
// "persons" and optional "families" lists.
package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/evz/family-wiki-sub001/internal/apperr"
	"github.com/evz/family-wiki-sub001/internal/dutch"
	"github.com/evz/family-wiki-sub001/internal/models"
)

// Person is one extracted person as written by the extraction step.
type Person struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	GivenNames   string   `json:"given_names" yaml:"given_names"`
	Particle     string   `json:"particle" yaml:"particle"`
	Surname      string   `json:"surname" yaml:"surname"`
	Sex          string   `json:"sex" yaml:"sex"`
	Gender       string   `json:"gender" yaml:"gender"`
	BirthDate    string   `json:"birth_date" yaml:"birth_date"`
	BirthPlace   string   `json:"birth_place" yaml:"birth_place"`
	BaptismDate  string   `json:"baptism_date" yaml:"baptism_date"`
	BaptismPlace string   `json:"baptism_place" yaml:"baptism_place"`
	DeathDate    string   `json:"death_date" yaml:"death_date"`
	DeathPlace   string   `json:"death_place" yaml:"death_place"`
	Occupation   string   `json:"occupation" yaml:"occupation"`
	Occupations  []string `json:"occupations" yaml:"occupations"`
	Notes        string   `json:"notes" yaml:"notes"`
	Confidence   float64  `json:"confidence" yaml:"confidence"`
}

// Validate rejects entries that carry no name at all.
func (p Person) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required.When(
			strings.TrimSpace(p.GivenNames) == "" && strings.TrimSpace(p.Surname) == "",
		).Error("a name, given names or surname is required")),
	)
}

// Family is one extracted family. Parent and child fields hold person IDs.
type Family struct {
	ID            string   `json:"id" yaml:"id"`
	Father        string   `json:"father" yaml:"father"`
	Mother        string   `json:"mother" yaml:"mother"`
	Children      []string `json:"children" yaml:"children"`
	Married       bool     `json:"married" yaml:"married"`
	MarriageDate  string   `json:"marriage_date" yaml:"marriage_date"`
	MarriagePlace string   `json:"marriage_place" yaml:"marriage_place"`
	DivorceDate   string   `json:"divorce_date" yaml:"divorce_date"`
	Notes         string   `json:"notes" yaml:"notes"`
}

// Validate requires at least one parent or child.
func (f Family) Validate() error {
	if f.Father == "" && f.Mother == "" && len(f.Children) == 0 {
		return errors.New("family has no members")
	}
	return nil
}

type envelope struct {
	Persons  []Person `json:"persons" yaml:"persons"`
	Families []Family `json:"families" yaml:"families"`
}

// Result is the outcome of a load.
type Result struct {
	Individuals []models.Individual
	Families    []models.Family
	// Skipped counts entries rejected by validation.
	Skipped int
	// Issues describes each skipped entry.
	Issues []string
}

// Document returns the converted records as a models.Document.
func (r *Result) Document() *models.Document {
	return &models.Document{Individuals: r.Individuals, Families: r.Families}
}

// LoadFile reads and converts an extraction file. A missing file yields an
// error matching os.ErrNotExist.
func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extraction: read %s: %w", path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return Parse(data, ext == ".yaml" || ext == ".yml")
}

// Parse decodes extraction data. JSON is assumed unless asYAML is set or the
// payload does not start with '{' or '['.
func Parse(data []byte, asYAML bool) (*Result, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &Result{}, nil
	}
	if !asYAML && trimmed[0] != '{' && trimmed[0] != '[' {
		asYAML = true
	}

	var env envelope
	var err error
	if trimmed[0] == '[' || (asYAML && isYAMLList(trimmed)) {
		err = unmarshal(trimmed, asYAML, &env.Persons)
	} else {
		err = unmarshal(trimmed, asYAML, &env)
	}
	if err != nil {
		return nil, fmt.Errorf("extraction: decode: %w: %w", apperr.ErrInvalidInput, err)
	}
	return Convert(env.Persons, env.Families), nil
}

func unmarshal(data []byte, asYAML bool, v any) error {
	if asYAML {
		return yaml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

func isYAMLList(data []byte) bool {
	var probe any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return false
	}
	_, ok := probe.([]any)
	return ok
}

// Convert validates and normalizes extracted entries. Invalid entries are
// skipped and reported in the result.
func Convert(persons []Person, families []Family) *Result {
	res := &Result{
		Individuals: make([]models.Individual, 0, len(persons)),
		Families:    make([]models.Family, 0, len(families)),
	}
	for i, p := range persons {
		if err := p.Validate(); err != nil {
			res.Skipped++
			res.Issues = append(res.Issues, fmt.Sprintf("person %d: %v", i+1, err))
			continue
		}
		res.Individuals = append(res.Individuals, p.Individual())
	}
	for i, f := range families {
		if err := f.Validate(); err != nil {
			res.Skipped++
			res.Issues = append(res.Issues, fmt.Sprintf("family %d: %v", i+1, err))
			continue
		}
		res.Families = append(res.Families, f.Family())
	}
	return res
}

// Individual converts the entry, normalizing names, dates and places.
func (p Person) Individual() models.Individual {
	ind := models.Individual{ID: strings.TrimSpace(p.ID)}

	given, particle, surname := p.GivenNames, p.Particle, p.Surname
	if strings.TrimSpace(given) == "" && strings.TrimSpace(surname) == "" {
		given, particle, surname = dutch.ParseName(p.Name)
	}
	ind.GivenNames = dutch.StandardizeName(given)
	ind.Particle = strings.ToLower(strings.Join(strings.Fields(particle), " "))
	ind.Surname = dutch.StandardizeName(surname)

	sex := p.Sex
	if sex == "" {
		sex = p.Gender
	}
	ind.Sex = models.ParseSex(sex)

	ind.Birth = event(p.BirthDate, p.BirthPlace)
	ind.Baptism = event(p.BaptismDate, p.BaptismPlace)
	ind.Death = event(p.DeathDate, p.DeathPlace)

	ind.AddOccupation(p.Occupation)
	for _, o := range p.Occupations {
		ind.AddOccupation(o)
	}
	ind.Notes = strings.TrimSpace(p.Notes)
	ind.Confidence = clamp(p.Confidence)
	return ind
}

// Family converts the entry. A marriage is declared when the entry says so
// or carries a marriage date or place.
func (f Family) Family() models.Family {
	fam := models.Family{
		ID:      strings.TrimSpace(f.ID),
		Father:  strings.TrimSpace(f.Father),
		Mother:  strings.TrimSpace(f.Mother),
		Divorce: dutch.ParseDate(f.DivorceDate),
		Notes:   strings.TrimSpace(f.Notes),
	}
	for _, c := range f.Children {
		if c = strings.TrimSpace(c); c != "" {
			fam.Children = append(fam.Children, c)
		}
	}
	if f.Married || strings.TrimSpace(f.MarriageDate) != "" || strings.TrimSpace(f.MarriagePlace) != "" {
		ev := event(f.MarriageDate, f.MarriagePlace)
		fam.Marriage = &ev
	}
	return fam
}

func event(date, place string) models.Event {
	return models.Event{
		Date:  dutch.ParseDate(date),
		Place: normalizePlace(place),
	}
}

// normalizePlace strips indicator words and capitalizes each comma-separated
// component.
func normalizePlace(s string) string {
	s = dutch.StripPlaceIndicators(s)
	if s == "" {
		return ""
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, dutch.StandardizePlace(p))
		}
	}
	return strings.Join(out, ", ")
}

func clamp(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
