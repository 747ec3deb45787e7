package gedcom

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/evz/family-wiki-sub001/internal/models"
)

// WriteFile encodes the document and writes it to path, creating parent
// directories as needed. It returns the written lines.
func (e *Encoder) WriteFile(path string, individuals []models.Individual, families []models.Family) ([]string, error) {
	lines := e.Encode(individuals, families)
	if err := WriteLines(path, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// WriteLines writes lines joined by newlines to path, creating parent
// directories as needed.
func WriteLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("gedcom: mkdir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Render(lines)+"\n"), 0o644); err != nil {
		return fmt.Errorf("gedcom: write %s: %w", path, err)
	}
	return nil
}
