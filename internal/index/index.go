package index

import "github.com/evz/family-wiki-sub001/internal/models"

// TreeIndex defines the tree indexing operations. Consumers depend on this
// interface rather than the concrete *DB type.
type TreeIndex interface {
	ImportDocument(source, checksum string, doc *models.Document) error
	DeleteSource(source string) error
	GetOrCreatePlace(name string) (int64, error)
	ListPersons(f PersonFilter) ([]PersonRow, int, error)
	GetPerson(source, id string) (*PersonRow, error)
	ListFamilies(f FamilyFilter) ([]FamilyRow, int, error)
	Relatives(source, id string) (*Relatives, error)
	Search(query string, limit int) ([]SearchResult, error)
	Document(source string) (*models.Document, error)
	Sources() ([]SourceRow, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies TreeIndex at compile time.
var _ TreeIndex = (*DB)(nil)
