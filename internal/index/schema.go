// Package index stores decoded family trees in SQLite so persons and families
// can be listed, searched and exported again. Full-text search uses FTS5 when
// built with the sqlite_fts5 tag and a LIKE scan otherwise.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS imports (
	source      TEXT PRIMARY KEY,
	checksum    TEXT NOT NULL DEFAULT '',
	individuals INTEGER NOT NULL DEFAULT 0,
	families    INTEGER NOT NULL DEFAULT 0,
	imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS places (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS persons (
	source           TEXT NOT NULL REFERENCES imports(source) ON DELETE CASCADE,
	id               TEXT NOT NULL,
	position         INTEGER NOT NULL,
	given_names      TEXT NOT NULL DEFAULT '',
	particle         TEXT NOT NULL DEFAULT '',
	surname          TEXT NOT NULL DEFAULT '',
	sex              TEXT NOT NULL DEFAULT '',
	birth_date       TEXT NOT NULL DEFAULT '',
	birth_place_id   INTEGER REFERENCES places(id),
	baptism_date     TEXT NOT NULL DEFAULT '',
	baptism_place_id INTEGER REFERENCES places(id),
	death_date       TEXT NOT NULL DEFAULT '',
	death_place_id   INTEGER REFERENCES places(id),
	occupations      TEXT NOT NULL DEFAULT '[]',
	notes            TEXT NOT NULL DEFAULT '',
	confidence       REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (source, id)
);

CREATE TABLE IF NOT EXISTS families (
	source            TEXT NOT NULL REFERENCES imports(source) ON DELETE CASCADE,
	id                TEXT NOT NULL,
	position          INTEGER NOT NULL,
	father            TEXT NOT NULL DEFAULT '',
	mother            TEXT NOT NULL DEFAULT '',
	has_marriage      INTEGER NOT NULL DEFAULT 0,
	marriage_date     TEXT NOT NULL DEFAULT '',
	marriage_place_id INTEGER REFERENCES places(id),
	divorce           TEXT NOT NULL DEFAULT '',
	notes             TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (source, id)
);

CREATE TABLE IF NOT EXISTS family_children (
	source    TEXT NOT NULL,
	family_id TEXT NOT NULL,
	child_id  TEXT NOT NULL,
	position  INTEGER NOT NULL,
	FOREIGN KEY (source, family_id) REFERENCES families(source, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_persons_surname ON persons(surname, given_names);
CREATE INDEX IF NOT EXISTS idx_families_father ON families(source, father);
CREATE INDEX IF NOT EXISTS idx_families_mother ON families(source, mother);
CREATE INDEX IF NOT EXISTS idx_children_family ON family_children(source, family_id);
CREATE INDEX IF NOT EXISTS idx_children_child ON family_children(source, child_id);
`

// DB wraps a sql.DB with tree index operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
