//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/evz/family-wiki-sub001/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS persons_fts USING fts5(
			source UNINDEXED,
			id UNINDEXED,
			name,
			notes,
			occupations,
			places,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsertPerson(tx *sql.Tx, source, id string, p models.Individual, places string) error {
	_, err := tx.Exec(`INSERT INTO persons_fts (source, id, name, notes, occupations, places) VALUES (?, ?, ?, ?, ?, ?)`,
		source, id, p.DisplayName(), p.Notes, strings.Join(p.Occupations, " "), places)
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

func ftsDeleteSource(tx *sql.Tx, source string) {
	_, _ = tx.Exec(`DELETE FROM persons_fts WHERE source = ?`, source)
}

// ftsQuery quotes every whitespace-separated term so user input cannot
// trip the FTS5 query syntax.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

// Search performs an FTS5 full-text search and returns matching persons with
// snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	q := ftsQuery(query)
	if q == "" {
		return []SearchResult{}, nil
	}
	rows, err := db.conn.Query(`
		SELECT source, id, name,
		       snippet(persons_fts, 3, '<b>', '</b>', '...', 32)
		FROM persons_fts
		WHERE persons_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, q, limit)
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
