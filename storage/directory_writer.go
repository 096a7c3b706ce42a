package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"bikeshop-prices/models"
)

// DirectoryWriter writes collected shop directory entries as TSV, ready to
// be curated into the price dataset.
type DirectoryWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewDirectoryWriter creates (or truncates) the TSV file and writes the header.
func NewDirectoryWriter(path string) (*DirectoryWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("directory: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("directory: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'
	if err := w.Write([]string{"name", "address", "website", "lat", "lon", "archive_oldest", "archive_newest"}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("directory: write header: %w", err)
	}
	return &DirectoryWriter{file: f, writer: w}, nil
}

// WriteEntries implements DirectoryEntryWriter.
func (d *DirectoryWriter) WriteEntries(entries []*models.DirectoryEntry) error {
	for _, e := range entries {
		row := []string{e.Name, e.Address, e.Website, number(e.Lat), number(e.Lon), e.ArchiveOldest, e.ArchiveNewest}
		if err := d.writer.Write(row); err != nil {
			return fmt.Errorf("directory: write row: %w", err)
		}
	}
	d.writer.Flush()
	return d.writer.Error()
}

func (d *DirectoryWriter) Close() error {
	d.writer.Flush()
	return d.file.Close()
}

// WriteCandidatesCSV writes probe results for manual review.
func WriteCandidatesCSV(path string, candidates []*models.PriceCandidate) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("candidates: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("candidates: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "website", "snippet", "value"}); err != nil {
		return fmt.Errorf("candidates: write header: %w", err)
	}
	for _, c := range candidates {
		v := c.Value
		if err := w.Write([]string{c.ShopName, c.Website, c.Snippet, number(&v)}); err != nil {
			return fmt.Errorf("candidates: write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
