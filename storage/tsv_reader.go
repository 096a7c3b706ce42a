package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"bikeshop-prices/models"
)

// TSVSource loads the dataset from a tab-separated file, either on disk or
// behind a URL. One request, no retry.
type TSVSource struct {
	path   string
	url    string
	client *http.Client
}

// NewTSVFileSource reads the table from a local path.
func NewTSVFileSource(path string) *TSVSource {
	return &TSVSource{path: path}
}

// NewTSVURLSource fetches the table with a single GET.
func NewTSVURLSource(url string, client *http.Client) *TSVSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &TSVSource{url: url, client: client}
}

// LoadRows implements RowSource.
func (s *TSVSource) LoadRows(ctx context.Context) ([]models.RawRow, error) {
	if s.url != "" {
		return s.fetch(ctx)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("tsv: open %q: %w", s.path, err)
	}
	defer f.Close()
	return ReadTSV(f)
}

func (s *TSVSource) fetch(ctx context.Context) ([]models.RawRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("tsv: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tsv: fetch %q: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tsv: fetch %q: unexpected status %s", s.url, resp.Status)
	}
	return ReadTSV(resp.Body)
}

// ReadTSV parses a header row followed by data rows. Header cells are
// trimmed; rows shorter than the header are padded with empty cells.
func ReadTSV(r io.Reader) ([]models.RawRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("tsv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("tsv: read header: %w", err)
	}
	header = normalizeHeader(header)

	var rows []models.RawRow
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("tsv: read line %d: %w", line, err)
		}
		rows = append(rows, rowFromCells(header, record))
	}
	return rows, nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func rowFromCells(header, cells []string) models.RawRow {
	row := make(models.RawRow, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if i < len(cells) {
			row[h] = cells[i]
		} else {
			row[h] = ""
		}
	}
	return row
}
