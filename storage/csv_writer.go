package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"bikeshop-prices/models"
)

// recordHeader mirrors the input dataset vocabulary plus the derived columns.
var recordHeader = []string{
	"name", "address", "website", "offers repair",
	"First Price", "First Price (Inflation adjusted)", "First Price Date", "First Price Source",
	"Current Price", "Current Price Date", "Current Price Source",
	"lat", "lon", "Delta vs First (adjusted)", "Delta vs First (adjusted, %)",
}

// CSVWriter writes canonical records as CSV. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	closer io.Closer
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w, err := NewCSVStreamWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// NewCSVStreamWriter writes to an arbitrary writer, e.g. an HTTP response.
func NewCSVStreamWriter(out io.Writer) (*CSVWriter, error) {
	w := csv.NewWriter(out)
	if err := w.Write(recordHeader); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv: flush header: %w", err)
	}
	return &CSVWriter{writer: w}, nil
}

// Write appends one row per record; absent values become empty cells.
func (c *CSVWriter) Write(records []*models.ShopRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range records {
		row := []string{
			r.Name,
			text(r.Address),
			text(r.Website),
			boolean(r.OffersRepair),
			number(r.FirstPrice),
			number(r.FirstPriceInflationAdjusted),
			r.FirstPriceDate,
			text(r.FirstPriceSource),
			number(r.CurrentPrice),
			r.CurrentPriceDate,
			text(r.CurrentPriceSource),
			number(r.Lat),
			number(r.Lon),
			number(r.DeltaVsFirstAdj),
			number(r.DeltaVsFirstAdjPercentage),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file, if any.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if c.closer != nil {
		return c.closer.Close()
	}
	return c.writer.Error()
}

func text(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func number(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func boolean(p *bool) string {
	if p == nil {
		return ""
	}
	if *p {
		return "yes"
	}
	return "no"
}
