package storage

import (
	"path/filepath"
	"testing"

	"bikeshop-prices/models"
)

func newTestSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "shops.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	records := sampleRecords()

	if err := store.Write(records); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := store.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records; want 2", len(got))
	}

	r := got[0]
	if r.Name != "Radwerkstatt" || r.Address == nil || *r.Address != *records[0].Address {
		t.Errorf("first record = %+v", r)
	}
	if r.OffersRepair == nil || !*r.OffersRepair {
		t.Errorf("offersRepair = %v; want true", r.OffersRepair)
	}
	if r.FirstPriceInflationAdjusted == nil || *r.FirstPriceInflationAdjusted != 126.41 {
		t.Errorf("adjusted price = %v; want 126.41", r.FirstPriceInflationAdjusted)
	}
	if r.CurrentPriceSource != nil {
		t.Errorf("current price source = %q; want absent", *r.CurrentPriceSource)
	}

	b := got[1]
	if b.Name != "Bike Doctor" || b.FirstPrice != nil || b.Lat != nil {
		t.Errorf("second record = %+v", b)
	}
	if b.OffersRepair == nil || *b.OffersRepair {
		t.Errorf("offersRepair = %v; want false", b.OffersRepair)
	}
	if b.FirstPriceDate != models.SentinelDate {
		t.Errorf("first price date = %q", b.FirstPriceDate)
	}
}

func TestSQLiteStoreWriteReplaces(t *testing.T) {
	store := newTestSQLiteStore(t)

	var many []*models.ShopRecord
	for i := 0; i < 120; i++ {
		many = append(many, &models.ShopRecord{Name: "Shop", FirstPriceDate: models.SentinelDate, CurrentPriceDate: models.SentinelDate})
	}
	if err := store.Write(many); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := store.Write(sampleRecords()[1:]); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	got, err := store.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Bike Doctor" {
		t.Errorf("got %d records after replace; want only Bike Doctor", len(got))
	}
}
