package main

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evz/family-wiki-sub001/internal"
	"github.com/evz/family-wiki-sub001/internal/gedcom"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRunExport(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "extracted.json")
	output := filepath.Join(dir, "out", "family_tree.ged")
	require.NoError(t, os.WriteFile(input, []byte(`[
		{"id": "p1", "name": "Jan van der Berg", "birth_date": "15 maart 1850"},
		{"id": "p2", "name": "Grietje Bakker"},
		{"id": "p3"}
	]`), 0o644))

	cfg := internal.NewDefaultConfig()
	cfg.GEDCOM.HeaderProfile = gedcom.ProfileMinimal

	var out bytes.Buffer
	require.NoError(t, runExport(&out, discardLogger(), cfg, input, output))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "0 HEAD\n1 SOUR FAMILY_WIKI\n"))
	assert.Contains(t, text, "0 @I0002@ INDI\n1 NAME Grietje /Bakker/\n")
	assert.Contains(t, text, "1 LANG English\n")
	assert.True(t, strings.HasSuffix(text, "0 TRLR\n"))

	summary := out.String()
	assert.Contains(t, summary, "2 individuals, 0 families, 1 skipped")
	assert.Contains(t, summary, "Validation: OK")
}

func TestRunExportMissingInput(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "family_tree.ged")

	var out bytes.Buffer
	err := runExport(&out, discardLogger(), internal.NewDefaultConfig(), filepath.Join(dir, "missing.json"), output)
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, out.String())

	_, statErr := os.Stat(output)
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, gedcom.Report{Valid: false, LineCount: 3, Issues: []string{"line 2: does not start with a level number"}})
	assert.Equal(t, "Validation: 1 issues in 3 lines\n  line 2: does not start with a level number\n", out.String())
}

func TestRunValidate(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		data   string
		valid  bool
		output string
	}{
		{"plain", "0 HEAD\n1 CHAR UTF-8\n0 TRLR\n", true, "Validation: OK"},
		{"bom and crlf", "\ufeff0 HEAD\r\n1 CHAR UTF-8\r\n0 TRLR\r\n", true, "Validation: OK"},
		{"broken", "0 HEAD\nNAME Jan\n0 TRLR\n", false, "line 2: does not start with a level number"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, fmt.Sprintf("tree%d.ged", i))
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))

			var out bytes.Buffer
			valid, err := runValidate(&out, path)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, valid)
			assert.Contains(t, out.String(), tt.output)
		})
	}
}

func TestRunValidateMissingFile(t *testing.T) {
	var out bytes.Buffer
	_, err := runValidate(&out, filepath.Join(t.TempDir(), "missing.ged"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}
