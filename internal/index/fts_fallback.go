//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/evz/family-wiki-sub001/internal/models"
)

// displayNameSQL renders "given particle surname" without doubled spaces.
const displayNameSQL = `trim(replace(p.given_names || ' ' || p.particle || ' ' || p.surname, '  ', ' '))`

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search scans the persons table with LIKE.
	return nil
}

func ftsInsertPerson(_ *sql.Tx, _, _ string, _ models.Individual, _ string) error {
	return nil
}

func ftsDeleteSource(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search over names, notes, occupations and
// place names (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT p.source, p.id,
		       `+displayNameSQL+`,
		       substr(p.notes, 1, 200)
		FROM persons p
		LEFT JOIN places bp ON bp.id = p.birth_place_id
		LEFT JOIN places dp ON dp.id = p.death_place_id
		WHERE `+displayNameSQL+` LIKE ?
		   OR p.notes LIKE ?
		   OR p.occupations LIKE ?
		   OR bp.name LIKE ?
		   OR dp.name LIKE ?
		ORDER BY p.surname, p.given_names
		LIMIT ?
	`, like, like, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Source, &r.ID, &r.Name, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
