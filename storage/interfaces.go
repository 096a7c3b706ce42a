package storage

import (
	"context"

	"bikeshop-prices/models"
)

// RowSource loads the raw input table in one shot.
type RowSource interface {
	LoadRows(ctx context.Context) ([]models.RawRow, error)
}

// RecordWriter is the interface any canonical-record backend must satisfy.
type RecordWriter interface {
	Write(records []*models.ShopRecord) error
	Close() error
}

// DirectoryEntryWriter persists collected shop directory entries.
type DirectoryEntryWriter interface {
	WriteEntries(entries []*models.DirectoryEntry) error
	Close() error
}
