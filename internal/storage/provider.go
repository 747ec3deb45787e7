// Package storage keeps the .ged files that make up the family tree.
package storage

import (
	"path/filepath"
	"strings"

	"github.com/evz/family-wiki-sub001/internal/models"
)

// Extension is the file extension of tree sources.
const Extension = ".ged"

// Provider is the interface for tree file operations. Paths are relative to
// the tree root.
type Provider interface {
	// List returns metadata for every .ged file under dir.
	List(dir string) ([]models.SourceMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}

// IsTreeFile reports whether name carries the .ged extension, ignoring case.
func IsTreeFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Extension)
}
