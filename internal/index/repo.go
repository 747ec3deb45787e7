package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/evz/family-wiki-sub001/internal/models"
)

// PersonRow is an indexed individual together with the source file it came
// from.
type PersonRow struct {
	Source string `json:"source"`
	models.Individual
}

// FamilyRow is an indexed family together with its source file.
type FamilyRow struct {
	Source string `json:"source"`
	models.Family
}

// SourceRow describes one imported .ged file.
type SourceRow struct {
	Source      string    `json:"source"`
	Checksum    string    `json:"checksum"`
	Individuals int       `json:"individuals"`
	Families    int       `json:"families"`
	ImportedAt  time.Time `json:"imported_at"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Source  string `json:"source"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Snippet string `json:"snippet"`
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// ImportDocument replaces everything indexed for source with doc in a single
// transaction. Places are shared between sources and resolved by name.
func (db *DB) ImportDocument(source, checksum string, doc *models.Document) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := deleteSource(tx, source); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO imports (source, checksum, individuals, families, imported_at)
		VALUES (?, ?, ?, ?, ?)
	`, source, checksum, len(doc.Individuals), len(doc.Families), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("index: insert import: %w", err)
	}

	personStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO persons (
			source, id, position, given_names, particle, surname, sex,
			birth_date, birth_place_id, baptism_date, baptism_place_id,
			death_date, death_place_id, occupations, notes, confidence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare person insert: %w", err)
	}
	defer personStmt.Close()

	for i, p := range doc.Individuals {
		id := p.ID
		if id == "" {
			id = fmt.Sprintf("_I%04d", i+1)
		}
		birth, err := placeID(tx, p.Birth.Place)
		if err != nil {
			return err
		}
		baptism, err := placeID(tx, p.Baptism.Place)
		if err != nil {
			return err
		}
		death, err := placeID(tx, p.Death.Place)
		if err != nil {
			return err
		}
		occ, _ := json.Marshal(nonNil(p.Occupations))
		_, err = personStmt.Exec(source, id, i, p.GivenNames, p.Particle, p.Surname, string(p.Sex),
			p.Birth.Date, birth, p.Baptism.Date, baptism, p.Death.Date, death,
			string(occ), p.Notes, p.Confidence)
		if err != nil {
			return fmt.Errorf("index: insert person %s: %w", id, err)
		}
		places := strings.Join([]string{p.Birth.Place, p.Baptism.Place, p.Death.Place}, " ")
		if err := ftsInsertPerson(tx, source, id, p, places); err != nil {
			return err
		}
	}

	for i, f := range doc.Families {
		id := f.ID
		if id == "" {
			id = fmt.Sprintf("_F%04d", i+1)
		}
		var (
			married  int
			date     string
			marPlace sql.NullInt64
		)
		if f.Marriage != nil {
			married = 1
			date = f.Marriage.Date
			if marPlace, err = placeID(tx, f.Marriage.Place); err != nil {
				return err
			}
		}
		_, err = tx.Exec(`
			INSERT OR REPLACE INTO families (
				source, id, position, father, mother, has_marriage,
				marriage_date, marriage_place_id, divorce, notes
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, source, id, i, f.Father, f.Mother, married, date, marPlace, f.Divorce, f.Notes)
		if err != nil {
			return fmt.Errorf("index: insert family %s: %w", id, err)
		}
		for pos, child := range f.Children {
			_, err = tx.Exec(`
				INSERT INTO family_children (source, family_id, child_id, position)
				VALUES (?, ?, ?, ?)
			`, source, id, child, pos)
			if err != nil {
				return fmt.Errorf("index: insert child of %s: %w", id, err)
			}
		}
	}

	return tx.Commit()
}

// DeleteSource removes a source and everything imported from it.
func (db *DB) DeleteSource(source string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := deleteSource(tx, source); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteSource(tx *sql.Tx, source string) error {
	ftsDeleteSource(tx, source)
	for _, q := range []string{
		`DELETE FROM family_children WHERE source = ?`,
		`DELETE FROM families WHERE source = ?`,
		`DELETE FROM persons WHERE source = ?`,
		`DELETE FROM imports WHERE source = ?`,
	} {
		if _, err := tx.Exec(q, source); err != nil {
			return fmt.Errorf("index: delete source %s: %w", source, err)
		}
	}
	return nil
}

// GetOrCreatePlace returns the id of the place named name, creating it when
// needed. The name is trimmed first; an empty name yields id 0 and no row.
func (db *DB) GetOrCreatePlace(name string) (int64, error) {
	id, err := placeID(db.conn, name)
	if err != nil {
		return 0, err
	}
	return id.Int64, nil
}

func placeID(q execer, name string) (sql.NullInt64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return sql.NullInt64{}, nil
	}
	if _, err := q.Exec(`INSERT INTO places (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return sql.NullInt64{}, fmt.Errorf("index: insert place: %w", err)
	}
	var id int64
	if err := q.QueryRow(`SELECT id FROM places WHERE name = ?`, name).Scan(&id); err != nil {
		return sql.NullInt64{}, fmt.Errorf("index: lookup place: %w", err)
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

// AllChecksums returns the stored checksum of every imported source.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT source, checksum FROM imports`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var src, cs string
		if err := rows.Scan(&src, &cs); err != nil {
			return nil, err
		}
		out[src] = cs
	}
	return out, rows.Err()
}

// Sources lists every imported source ordered by path.
func (db *DB) Sources() ([]SourceRow, error) {
	rows, err := db.conn.Query(`
		SELECT source, checksum, individuals, families, imported_at
		FROM imports ORDER BY source
	`)
	if err != nil {
		return nil, fmt.Errorf("index: sources: %w", err)
	}
	defer rows.Close()

	out := []SourceRow{}
	for rows.Next() {
		var s SourceRow
		if err := rows.Scan(&s.Source, &s.Checksum, &s.Individuals, &s.Families, &s.ImportedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
