package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"bikeshop-prices/models"
	"bikeshop-prices/utils"
)

const shopColumns = 16

// dialect captures the few places Postgres and SQLite differ.
type dialect struct {
	name        string
	driver      string
	placeholder func(n int) string
}

var (
	postgresDialect = dialect{name: "postgres", driver: "postgres", placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
	sqliteDialect   = dialect{name: "sqlite", driver: "sqlite", placeholder: func(int) string { return "?" }}
)

// SQLStore persists canonical records to PostgreSQL or SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// NewPostgresStore opens a connection to PostgreSQL, waiting for the server
// with retry, runs schema migrations and returns a ready-to-use store.
func NewPostgresStore(ctx context.Context, dsn string, retry *utils.RetryConfig) (*SQLStore, error) {
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres-ping", db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return newSQLStore(db, postgresDialect)
}

// NewSQLiteStore opens (or creates) the SQLite database file at path.
func NewSQLiteStore(path string) (*SQLStore, error) {
	db, err := sql.Open(sqliteDialect.driver, path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// modernc's driver serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return newSQLStore(db, sqliteDialect)
}

func newSQLStore(db *sql.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: d}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", d.name, err)
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS shops (
			position               INTEGER PRIMARY KEY,
			name                   TEXT NOT NULL,
			address                TEXT,
			website                TEXT,
			offers_repair          BOOLEAN,
			first_price_date       TEXT NOT NULL,
			first_price            DOUBLE PRECISION,
			first_price_adjusted   DOUBLE PRECISION,
			first_price_source     TEXT,
			current_price_date     TEXT NOT NULL,
			current_price          DOUBLE PRECISION,
			current_price_source   TEXT,
			lat                    DOUBLE PRECISION,
			lon                    DOUBLE PRECISION,
			delta_vs_first_adj     DOUBLE PRECISION,
			delta_vs_first_adj_pct DOUBLE PRECISION
		)`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_shops_name ON shops(name)`)
	return err
}

// Write replaces the stored record set with records in a single transaction.
func (s *SQLStore) Write(records []*models.ShopRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", s.dialect.name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM shops"); err != nil {
		return fmt.Errorf("%s: clear: %w", s.dialect.name, err)
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))
		if err := s.insertBatch(ctx, tx, i, records[i:end]); err != nil {
			return fmt.Errorf("%s: insert batch at %d: %w", s.dialect.name, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", s.dialect.name, err)
	}
	return nil
}

func (s *SQLStore) insertBatch(ctx context.Context, tx *sql.Tx, offset int, batch []*models.ShopRecord) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*shopColumns)

	for idx, r := range batch {
		base := idx * shopColumns
		ph := make([]string, shopColumns)
		for c := range ph {
			ph[c] = s.dialect.placeholder(base + c + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			offset+idx, r.Name, nullString(r.Address), nullString(r.Website), nullBool(r.OffersRepair),
			r.FirstPriceDate, nullFloat(r.FirstPrice), nullFloat(r.FirstPriceInflationAdjusted), nullString(r.FirstPriceSource),
			r.CurrentPriceDate, nullFloat(r.CurrentPrice), nullString(r.CurrentPriceSource),
			nullFloat(r.Lat), nullFloat(r.Lon), nullFloat(r.DeltaVsFirstAdj), nullFloat(r.DeltaVsFirstAdjPercentage))
	}

	query := fmt.Sprintf(`
		INSERT INTO shops (position, name, address, website, offers_repair,
			first_price_date, first_price, first_price_adjusted, first_price_source,
			current_price_date, current_price, current_price_source,
			lat, lon, delta_vs_first_adj, delta_vs_first_adj_pct)
		VALUES %s`, strings.Join(valueStrings, ","))

	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}

// FetchAll retrieves the stored records in their original order.
func (s *SQLStore) FetchAll() ([]*models.ShopRecord, error) {
	rows, err := s.db.Query(`
		SELECT name, address, website, offers_repair,
			first_price_date, first_price, first_price_adjusted, first_price_source,
			current_price_date, current_price, current_price_source,
			lat, lon, delta_vs_first_adj, delta_vs_first_adj_pct
		FROM shops
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch all: %w", s.dialect.name, err)
	}
	defer rows.Close()

	var records []*models.ShopRecord
	for rows.Next() {
		var (
			r                                      models.ShopRecord
			address, website, firstSrc, currentSrc sql.NullString
			offersRepair                           sql.NullBool
			firstPrice, firstAdj, currentPrice     sql.NullFloat64
			lat, lon, delta, deltaPct              sql.NullFloat64
		)
		if err := rows.Scan(
			&r.Name, &address, &website, &offersRepair,
			&r.FirstPriceDate, &firstPrice, &firstAdj, &firstSrc,
			&r.CurrentPriceDate, &currentPrice, &currentSrc,
			&lat, &lon, &delta, &deltaPct,
		); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", s.dialect.name, err)
		}
		r.Address, r.Website = stringPtr(address), stringPtr(website)
		r.FirstPriceSource, r.CurrentPriceSource = stringPtr(firstSrc), stringPtr(currentSrc)
		r.OffersRepair = boolPtr(offersRepair)
		r.FirstPrice, r.FirstPriceInflationAdjusted = floatPtr(firstPrice), floatPtr(firstAdj)
		r.CurrentPrice = floatPtr(currentPrice)
		r.Lat, r.Lon = floatPtr(lat), floatPtr(lon)
		r.DeltaVsFirstAdj, r.DeltaVsFirstAdjPercentage = floatPtr(delta), floatPtr(deltaPct)
		records = append(records, &r)
	}
	return records, rows.Err()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func boolPtr(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}
