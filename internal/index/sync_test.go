package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/evz/family-wiki-sub001/internal/storage"
)

const janGED = `0 HEAD
1 CHAR UTF-8
0 @I1@ INDI
1 NAME Jan /Jansen/
1 BIRT
2 DATE 1 januari 1800
2 PLAC Amsterdam
0 @I2@ INDI
1 NAME Maria /de Vries/
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
0 TRLR
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func syncEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store, testDB(t)
}

func TestSyncImportsAndRemoves(t *testing.T) {
	dir, store, db := syncEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "jan.ged"), []byte(janGED), 0o644)
	_ = os.MkdirAll(filepath.Join(dir, "tak"), 0o755)
	_ = os.WriteFile(filepath.Join(dir, "tak", "leeg.ged"), []byte("0 HEAD\n0 TRLR\n"), 0o644)

	report, err := Sync(context.Background(), db, store, quietLogger())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(report.Imported) != 2 || report.Individuals != 2 || report.Families != 1 {
		t.Errorf("report = %+v", report)
	}

	p, err := db.GetPerson("jan.ged", "I1")
	if err != nil {
		t.Fatalf("GetPerson: %v", err)
	}
	if p.Birth.Date != "01 JAN 1800" {
		t.Errorf("birth date = %q", p.Birth.Date)
	}

	// A second pass with nothing changed imports nothing.
	report, _ = Sync(context.Background(), db, store, quietLogger())
	if len(report.Imported) != 0 {
		t.Errorf("unchanged files re-imported: %v", report.Imported)
	}

	_ = os.Remove(filepath.Join(dir, "jan.ged"))
	report, _ = Sync(context.Background(), db, store, quietLogger())
	if len(report.Removed) != 1 || report.Removed[0] != "jan.ged" {
		t.Errorf("removed = %v", report.Removed)
	}
	if _, err := db.GetPerson("jan.ged", "I1"); err == nil {
		t.Error("person from removed source still indexed")
	}
}

func TestSyncCancelled(t *testing.T) {
	dir, store, db := syncEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "jan.ged"), []byte(janGED), 0o644)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Sync(ctx, db, store, quietLogger()); err == nil {
		t.Error("expected error from cancelled context")
	}
}
