package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/evz/family-wiki-sub001/internal/apperr"
	"github.com/evz/family-wiki-sub001/internal/models"
)

// Default and maximum page sizes for list queries.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// PersonFilter narrows ListPersons. Empty fields match everything.
type PersonFilter struct {
	Source  string
	Surname string
	Limit   int
	Offset  int
}

// FamilyFilter narrows ListFamilies. Person matches families where the given
// id appears as father, mother or child.
type FamilyFilter struct {
	Source string
	Person string
	Limit  int
	Offset int
}

// Relatives are the families a person belongs to.
type Relatives struct {
	// AsChild holds the families listing the person as a child.
	AsChild []FamilyRow `json:"as_child"`
	// AsParent holds the families listing the person as father or mother.
	AsParent []FamilyRow `json:"as_parent"`
}

const personColumns = `
	p.source, p.id, p.given_names, p.particle, p.surname, p.sex,
	p.birth_date, COALESCE(bp.name, ''),
	p.baptism_date, COALESCE(cp.name, ''),
	p.death_date, COALESCE(dp.name, ''),
	p.occupations, p.notes, p.confidence
`

const personJoins = `
	FROM persons p
	LEFT JOIN places bp ON bp.id = p.birth_place_id
	LEFT JOIN places cp ON cp.id = p.baptism_place_id
	LEFT JOIN places dp ON dp.id = p.death_place_id
`

const familyColumns = `
	f.source, f.id, f.father, f.mother, f.has_marriage,
	f.marriage_date, COALESCE(mp.name, ''), f.divorce, f.notes
`

const familyJoins = `
	FROM families f
	LEFT JOIN places mp ON mp.id = f.marriage_place_id
`

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(s scanner) (PersonRow, error) {
	var (
		r   PersonRow
		sex string
		occ string
	)
	err := s.Scan(&r.Source, &r.ID, &r.GivenNames, &r.Particle, &r.Surname, &sex,
		&r.Birth.Date, &r.Birth.Place,
		&r.Baptism.Date, &r.Baptism.Place,
		&r.Death.Date, &r.Death.Place,
		&occ, &r.Notes, &r.Confidence)
	if err != nil {
		return r, err
	}
	r.Sex = models.Sex(sex)
	_ = json.Unmarshal([]byte(occ), &r.Occupations)
	if len(r.Occupations) == 0 {
		r.Occupations = nil
	}
	return r, nil
}

func scanFamily(s scanner) (FamilyRow, error) {
	var (
		r       FamilyRow
		married int
		ev      models.Event
	)
	err := s.Scan(&r.Source, &r.ID, &r.Father, &r.Mother, &married,
		&ev.Date, &ev.Place, &r.Divorce, &r.Notes)
	if err != nil {
		return r, err
	}
	if married != 0 {
		r.Marriage = &ev
	}
	return r, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListPersons returns one page of persons ordered by surname and given names,
// plus the total number of matches.
func (db *DB) ListPersons(f PersonFilter) ([]PersonRow, int, error) {
	limit, offset := clampPage(f.Limit, f.Offset)

	var (
		where []string
		args  []any
	)
	if f.Source != "" {
		where = append(where, "p.source = ?")
		args = append(args, f.Source)
	}
	if f.Surname != "" {
		where = append(where, "p.surname = ? COLLATE NOCASE")
		args = append(args, f.Surname)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM persons p`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count persons: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+personColumns+personJoins+cond+`
		ORDER BY p.surname COLLATE NOCASE, p.given_names COLLATE NOCASE, p.source, p.position
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list persons: %w", err)
	}
	defer rows.Close()

	out := []PersonRow{}
	for rows.Next() {
		r, err := scanPerson(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// GetPerson returns a single person. With an empty source the first source
// in path order carrying the id wins.
func (db *DB) GetPerson(source, id string) (*PersonRow, error) {
	q := `SELECT ` + personColumns + personJoins + ` WHERE p.id = ?`
	args := []any{id}
	if source != "" {
		q += ` AND p.source = ?`
		args = append(args, source)
	}
	q += ` ORDER BY p.source LIMIT 1`

	r, err := scanPerson(db.conn.QueryRow(q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: person %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get person: %w", err)
	}
	return &r, nil
}

// ListFamilies returns one page of families in import order.
func (db *DB) ListFamilies(f FamilyFilter) ([]FamilyRow, int, error) {
	limit, offset := clampPage(f.Limit, f.Offset)

	var (
		where []string
		args  []any
	)
	if f.Source != "" {
		where = append(where, "f.source = ?")
		args = append(args, f.Source)
	}
	if f.Person != "" {
		where = append(where, `(f.father = ? OR f.mother = ? OR EXISTS (
			SELECT 1 FROM family_children c
			WHERE c.source = f.source AND c.family_id = f.id AND c.child_id = ?))`)
		args = append(args, f.Person, f.Person, f.Person)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM families f`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count families: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+familyColumns+familyJoins+cond+`
		ORDER BY f.source, f.position LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list families: %w", err)
	}
	out, err := collectFamilies(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := db.attachChildren(out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Relatives returns the families in source that mention the person.
func (db *DB) Relatives(source, id string) (*Relatives, error) {
	rows, err := db.conn.Query(`SELECT `+familyColumns+familyJoins+`
		WHERE f.source = ? AND EXISTS (
			SELECT 1 FROM family_children c
			WHERE c.source = f.source AND c.family_id = f.id AND c.child_id = ?)
		ORDER BY f.position`, source, id)
	if err != nil {
		return nil, fmt.Errorf("index: relatives: %w", err)
	}
	asChild, err := collectFamilies(rows)
	if err != nil {
		return nil, err
	}

	rows, err = db.conn.Query(`SELECT `+familyColumns+familyJoins+`
		WHERE f.source = ? AND (f.father = ? OR f.mother = ?)
		ORDER BY f.position`, source, id, id)
	if err != nil {
		return nil, fmt.Errorf("index: relatives: %w", err)
	}
	asParent, err := collectFamilies(rows)
	if err != nil {
		return nil, err
	}

	if err := db.attachChildren(asChild); err != nil {
		return nil, err
	}
	if err := db.attachChildren(asParent); err != nil {
		return nil, err
	}
	return &Relatives{AsChild: asChild, AsParent: asParent}, nil
}

// Document rebuilds the records of one source in their original order.
func (db *DB) Document(source string) (*models.Document, error) {
	var exists int
	err := db.conn.QueryRow(`SELECT 1 FROM imports WHERE source = ?`, source).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: source %s: %w", source, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: document: %w", err)
	}

	doc := &models.Document{Individuals: []models.Individual{}, Families: []models.Family{}}

	rows, err := db.conn.Query(`SELECT `+personColumns+personJoins+`
		WHERE p.source = ? ORDER BY p.position`, source)
	if err != nil {
		return nil, fmt.Errorf("index: document persons: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		r, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		doc.Individuals = append(doc.Individuals, r.Individual)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	frows, err := db.conn.Query(`SELECT `+familyColumns+familyJoins+`
		WHERE f.source = ? ORDER BY f.position`, source)
	if err != nil {
		return nil, fmt.Errorf("index: document families: %w", err)
	}
	fams, err := collectFamilies(frows)
	if err != nil {
		return nil, err
	}
	if err := db.attachChildren(fams); err != nil {
		return nil, err
	}
	for _, f := range fams {
		doc.Families = append(doc.Families, f.Family)
	}
	return doc, nil
}

func collectFamilies(rows *sql.Rows) ([]FamilyRow, error) {
	defer rows.Close()
	out := []FamilyRow{}
	for rows.Next() {
		r, err := scanFamily(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// attachChildren fills Children for each family in place.
func (db *DB) attachChildren(fams []FamilyRow) error {
	if len(fams) == 0 {
		return nil
	}
	stmt, err := db.conn.Prepare(`
		SELECT child_id FROM family_children
		WHERE source = ? AND family_id = ? ORDER BY position
	`)
	if err != nil {
		return fmt.Errorf("index: prepare children: %w", err)
	}
	defer stmt.Close()

	for i := range fams {
		rows, err := stmt.Query(fams[i].Source, fams[i].ID)
		if err != nil {
			return fmt.Errorf("index: children: %w", err)
		}
		for rows.Next() {
			var c string
			if err := rows.Scan(&c); err != nil {
				rows.Close()
				return err
			}
			fams[i].Children = append(fams[i].Children, c)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
