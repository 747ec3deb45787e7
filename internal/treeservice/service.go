// Package treeservice coordinates tree storage, the SQLite index and the
// GEDCOM codec.
package treeservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/evz/family-wiki-sub001/internal/apperr"
	"github.com/evz/family-wiki-sub001/internal/checksum"
	"github.com/evz/family-wiki-sub001/internal/gedcom"
	"github.com/evz/family-wiki-sub001/internal/index"
	"github.com/evz/family-wiki-sub001/internal/metrics"
	"github.com/evz/family-wiki-sub001/internal/models"
	"github.com/evz/family-wiki-sub001/internal/storage"
)

// Change kinds passed to the notifier.
const (
	ChangeImported = index.EventImported
	ChangeRemoved  = index.EventRemoved
)

// Notifier is told about every source the service imports or removes.
type Notifier func(kind, source string)

// SourceDetail describes an imported source.
type SourceDetail struct {
	Source      string        `json:"source"`
	Checksum    string        `json:"checksum"`
	Individuals int           `json:"individuals"`
	Families    int           `json:"families"`
	Report      gedcom.Report `json:"report"`
}

// Export is a rendered GEDCOM document with its validation report.
type Export struct {
	Lines  []string      `json:"-"`
	Text   string        `json:"gedcom"`
	Report gedcom.Report `json:"report"`
}

// PersonDetail is a person together with the families they belong to.
type PersonDetail struct {
	index.PersonRow
	Relatives *index.Relatives `json:"relatives"`
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records codec activity on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEncoderOptions sets the options every export encoder is built with.
func WithEncoderOptions(opts ...gedcom.EncoderOption) Option {
	return func(s *Service) { s.encoderOpts = opts }
}

// WithNotifier registers a change notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notify = n }
}

// Service coordinates storage, index and codec operations.
type Service struct {
	store       storage.Provider
	db          *index.DB
	dec         *gedcom.Decoder
	encoderOpts []gedcom.EncoderOption
	metrics     *metrics.Metrics
	logger      *slog.Logger
	notify      Notifier
}

// NewService creates a tree service.
func NewService(store storage.Provider, db *index.DB, opts ...Option) *Service {
	s := &Service{
		store:  store,
		db:     db,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dec = gedcom.NewDecoder(gedcom.WithLogger(s.logger))
	return s
}

// Store returns the underlying storage provider.
func (s *Service) Store() storage.Provider { return s.store }

// Index returns the underlying index.
func (s *Service) Index() *index.DB { return s.db }

// Changed forwards an index change made outside the service, such as by the
// file watcher, to the notifier.
func (s *Service) Changed(kind, source string) {
	if s.notify != nil {
		s.notify(kind, source)
	}
}

// Sync brings the index in line with the tree directory.
func (s *Service) Sync(ctx context.Context) (index.SyncReport, error) {
	start := time.Now()
	report, err := index.Sync(ctx, s.db, s.store, s.logger)
	s.metrics.ObserveSync(time.Since(start))
	if err != nil {
		return report, err
	}
	s.metrics.ObserveDecoded(report.Individuals, report.Families)
	for range report.Imported {
		s.metrics.IncrementImport(nil)
	}
	for range report.Failed {
		s.metrics.IncrementImport(errors.New("sync"))
	}
	for _, p := range report.Removed {
		s.Changed(ChangeRemoved, p)
	}
	for _, p := range report.Imported {
		s.Changed(ChangeImported, p)
	}
	return report, nil
}

// ImportSource stores data as source and indexes it. An existing source is
// only replaced when overwrite is set.
func (s *Service) ImportSource(_ context.Context, source string, data []byte, overwrite bool) (*SourceDetail, error) {
	if !storage.IsTreeFile(source) {
		return nil, fmt.Errorf("treeservice: %q is not a %s file: %w", source, storage.Extension, apperr.ErrInvalidInput)
	}
	_, readErr := s.store.Read(source)
	existed := readErr == nil
	if existed && !overwrite {
		return nil, fmt.Errorf("treeservice: source %s: %w", source, apperr.ErrAlreadyExists)
	}

	doc, err := s.dec.Decode(bytes.NewReader(data))
	if err != nil {
		s.metrics.IncrementImport(err)
		return nil, fmt.Errorf("treeservice: decode %s: %w: %w", source, apperr.ErrInvalidInput, err)
	}
	if err := s.store.Write(source, data); err != nil {
		s.metrics.IncrementImport(err)
		return nil, err
	}
	cs := checksum.Sum(data)
	if err := s.db.ImportDocument(source, cs, doc); err != nil {
		s.metrics.IncrementImport(err)
		// A replaced file stays on disk; the next sync or watcher pass indexes it.
		if !existed {
			if delErr := s.store.Delete(source); delErr != nil {
				s.logger.Warn("remove unindexed source",
					slog.String("source", source), slog.Any("error", delErr))
			}
		}
		return nil, err
	}
	s.metrics.IncrementImport(nil)
	s.metrics.ObserveDecoded(len(doc.Individuals), len(doc.Families))

	report := gedcom.Validate(gedcom.SplitText(data))
	s.metrics.ObserveValidation(len(report.Issues))

	s.logger.Info("tree source imported",
		slog.String("source", source),
		slog.Int("individuals", len(doc.Individuals)),
		slog.Int("families", len(doc.Families)))
	s.Changed(ChangeImported, source)

	return &SourceDetail{
		Source:      source,
		Checksum:    cs,
		Individuals: len(doc.Individuals),
		Families:    len(doc.Families),
		Report:      report,
	}, nil
}

// DeleteSource removes a source file and its index rows.
func (s *Service) DeleteSource(_ context.Context, source string) error {
	if err := s.store.Delete(source); err != nil {
		return notFound(err)
	}
	if err := s.db.DeleteSource(source); err != nil {
		return err
	}
	s.logger.Info("tree source removed", slog.String("source", source))
	s.Changed(ChangeRemoved, source)
	return nil
}

// Sources lists imported sources.
func (s *Service) Sources(_ context.Context) ([]index.SourceRow, error) {
	return s.db.Sources()
}

// ListPersons returns one page of persons.
func (s *Service) ListPersons(_ context.Context, f index.PersonFilter) ([]index.PersonRow, int, error) {
	return s.db.ListPersons(f)
}

// GetPerson returns a person with their families.
func (s *Service) GetPerson(_ context.Context, source, id string) (*PersonDetail, error) {
	p, err := s.db.GetPerson(source, id)
	if err != nil {
		return nil, err
	}
	rel, err := s.db.Relatives(p.Source, p.ID)
	if err != nil {
		return nil, err
	}
	return &PersonDetail{PersonRow: *p, Relatives: rel}, nil
}

// ListFamilies returns one page of families.
func (s *Service) ListFamilies(_ context.Context, f index.FamilyFilter) ([]index.FamilyRow, int, error) {
	return s.db.ListFamilies(f)
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// ExportSource re-encodes an imported source from the index.
func (s *Service) ExportSource(_ context.Context, source string) (*Export, error) {
	doc, err := s.db.Document(source)
	if err != nil {
		return nil, err
	}
	return s.Encode(doc.Individuals, doc.Families), nil
}

// Encode renders records with a fresh encoder, so identifiers start at
// @I0001@ and @F0001@ for every call, and validates the result.
func (s *Service) Encode(individuals []models.Individual, families []models.Family) *Export {
	enc := gedcom.NewEncoder(s.encoderOpts...)
	lines := enc.Encode(individuals, families)
	s.metrics.ObserveEncoded(len(individuals), len(families))

	report := gedcom.Validate(lines)
	s.metrics.ObserveValidation(len(report.Issues))
	return &Export{Lines: lines, Text: gedcom.Render(lines), Report: report}
}

// Decode parses GEDCOM text without storing it.
func (s *Service) Decode(_ context.Context, r io.Reader) (*models.Document, error) {
	doc, err := s.dec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("treeservice: decode: %w: %w", apperr.ErrInvalidInput, err)
	}
	s.metrics.ObserveDecoded(len(doc.Individuals), len(doc.Families))
	return doc, nil
}

// Validate runs the structural validator over GEDCOM text.
func (s *Service) Validate(_ context.Context, data []byte) gedcom.Report {
	report := gedcom.Validate(gedcom.SplitText(data))
	s.metrics.ObserveValidation(len(report.Issues))
	return report
}

func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	}
	return err
}
