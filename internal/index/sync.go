package index

import (
	"bytes"
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/evz/family-wiki-sub001/internal/checksum"
	"github.com/evz/family-wiki-sub001/internal/gedcom"
	"github.com/evz/family-wiki-sub001/internal/models"
	"github.com/evz/family-wiki-sub001/internal/storage"
)

// SyncReport summarizes one Sync pass.
type SyncReport struct {
	Imported    []string
	Removed     []string
	Failed      []string
	Individuals int
	Families    int
}

type decoded struct {
	path     string
	checksum string
	doc      *models.Document
	err      error
}

// Sync walks the tree and brings the index up to date:
//   - new/changed files are decoded and imported
//   - sources removed from disk are deleted from the index
//
// Decoding runs in parallel; imports are applied one at a time.
func Sync(ctx context.Context, db *DB, store storage.Provider, logger *slog.Logger) (SyncReport, error) {
	var report SyncReport

	metas, err := store.List("")
	if err != nil {
		return report, err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return report, err
	}

	disk := make(map[string]struct{}, len(metas))
	var changed []models.SourceMetadata
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if checksums[m.Path] != m.Checksum {
			changed = append(changed, m)
		}
	}

	results := make([]decoded, len(changed))
	dec := gedcom.NewDecoder(gedcom.WithLogger(logger))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range changed {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = decodeSource(dec, store, m.Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	for _, r := range results {
		if r.err == nil {
			r.err = db.ImportDocument(r.path, r.checksum, r.doc)
		}
		if r.err != nil {
			logger.Warn("sync: import failed", slog.String("path", r.path), slog.String("error", r.err.Error()))
			report.Failed = append(report.Failed, r.path)
			continue
		}
		logger.Debug("sync: imported", slog.String("path", r.path),
			slog.Int("individuals", len(r.doc.Individuals)),
			slog.Int("families", len(r.doc.Families)))
		report.Imported = append(report.Imported, r.path)
		report.Individuals += len(r.doc.Individuals)
		report.Families += len(r.doc.Families)
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteSource(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("path", p))
		report.Removed = append(report.Removed, p)
	}

	return report, nil
}

func decodeSource(dec *gedcom.Decoder, store storage.Provider, path string) decoded {
	data, err := store.Read(path)
	if err != nil {
		return decoded{path: path, err: err}
	}
	doc, err := dec.Decode(bytes.NewReader(data))
	return decoded{path: path, checksum: checksum.Sum(data), doc: doc, err: err}
}

// ImportFile decodes data and imports it under path.
func ImportFile(db *DB, dec *gedcom.Decoder, path string, data []byte) (*models.Document, error) {
	doc, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := db.ImportDocument(path, checksum.Sum(data), doc); err != nil {
		return nil, err
	}
	return doc, nil
}
