package storage

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"bikeshop-prices/models"
)

// SheetsSource reads the dataset from a Google Sheet laid out like the TSV:
// the first row of the range is the header.
type SheetsSource struct {
	service       *sheets.Service
	spreadsheetID string
	readRange     string
}

// NewSheetsSource authenticates with a service-account credentials file.
func NewSheetsSource(ctx context.Context, credentialsFile, spreadsheetID, readRange string) (*SheetsSource, error) {
	service, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return &SheetsSource{service: service, spreadsheetID: spreadsheetID, readRange: readRange}, nil
}

// LoadRows implements RowSource.
func (s *SheetsSource) LoadRows(ctx context.Context) ([]models.RawRow, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: read %q: %w", s.readRange, err)
	}
	return rowsFromValues(resp.Values)
}

// rowsFromValues converts the API's [][]interface{} grid into raw rows.
// Trailing empty cells are omitted by the API, so short rows are common.
func rowsFromValues(values [][]interface{}) ([]models.RawRow, error) {
	if len(values) == 0 {
		return nil, errors.New("sheets: missing header row")
	}

	header := make([]string, len(values[0]))
	for i, v := range values[0] {
		header[i] = fmt.Sprint(v)
	}
	header = normalizeHeader(header)

	rows := make([]models.RawRow, 0, len(values)-1)
	for _, raw := range values[1:] {
		cells := make([]string, len(raw))
		for i, v := range raw {
			if v != nil {
				cells[i] = fmt.Sprint(v)
			}
		}
		rows = append(rows, rowFromCells(header, cells))
	}
	return rows, nil
}
