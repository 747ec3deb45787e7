// Package testutil provides shared test helpers for setting up tree
// directories and index databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evz/family-wiki-sub001/internal/index"
	"github.com/evz/family-wiki-sub001/internal/storage"
)

// SampleGEDCOM is a small two-person, one-family tree.
const SampleGEDCOM = `0 HEAD
1 CHAR UTF-8
0 @I1@ INDI
1 NAME Jan /Jansen/
1 SEX M
1 BIRT
2 DATE 1 januari 1800
2 PLAC Amsterdam
1 OCCU landbouwer
0 @I2@ INDI
1 NAME Maria /de Vries/
1 SEX F
0 @I3@ INDI
1 NAME Pieter /Jansen/
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
1 MARR
2 DATE 5 mei 1825
2 PLAC Haarlem
0 TRLR
`

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "familywiki-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestTree creates a temporary tree directory with a storage.Provider.
func TestTree(t *testing.T) (string, storage.Provider) {
	t.Helper()
	treeDir := t.TempDir()
	store, err := storage.NewFS(treeDir)
	if err != nil {
		t.Fatal(err)
	}
	return treeDir, store
}

// WriteTreeFile writes content to rel under the tree directory.
func WriteTreeFile(t *testing.T, treeDir, rel, content string) {
	t.Helper()
	full := filepath.Join(treeDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
