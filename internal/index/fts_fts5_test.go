//go:build sqlite_fts5

package index

import (
	"testing"

	"github.com/evz/family-wiki-sub001/internal/models"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM persons_fts`).Scan(&count); err != nil {
		t.Fatalf("persons_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	doc := &models.Document{Individuals: []models.Individual{
		{ID: "I1", GivenNames: "Geertruida", Surname: "Smit", Notes: "Werkte als dienstmeid op een boerderij bij Zwolle."},
	}}
	if err := db.ImportDocument("smit.ged", "f1", doc); err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}

	results, err := db.Search("dienstmeid", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Source != "smit.ged" || results[0].ID != "I1" {
		t.Errorf("hit = %+v", results[0])
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_DiacriticsFolded(t *testing.T) {
	db := testDB(t)
	doc := &models.Document{Individuals: []models.Individual{{ID: "I1", GivenNames: "Zoë", Surname: "Hoël"}}}
	_ = db.ImportDocument("z.ged", "1", doc)

	results, err := db.Search("hoel", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected accent-insensitive hit, got %d", len(results))
	}
}

func TestFTS5_QuotesUserInput(t *testing.T) {
	db := testDB(t)
	if _, err := db.Search(`"unbalanced AND (`, 10); err != nil {
		t.Errorf("search with syntax characters failed: %v", err)
	}
	if got := ftsQuery(`van "der`); got != `"van" """der"` {
		t.Errorf("ftsQuery = %s", got)
	}
}

func TestFTS5_ReimportReplacesEntries(t *testing.T) {
	db := testDB(t)
	_ = db.ImportDocument("a.ged", "1", &models.Document{Individuals: []models.Individual{{ID: "I1", Notes: "eerste"}}})
	_ = db.ImportDocument("a.ged", "2", &models.Document{Individuals: []models.Individual{{ID: "I1", Notes: "tweede"}}})

	if res, _ := db.Search("eerste", 10); len(res) != 0 {
		t.Errorf("stale fts entry: %+v", res)
	}
	if res, _ := db.Search("tweede", 10); len(res) != 1 {
		t.Errorf("expected new entry, got %d", len(res))
	}
}
