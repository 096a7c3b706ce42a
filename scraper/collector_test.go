package scraper

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bikeshop-prices/models"
	"bikeshop-prices/utils"
)

type fakeFinder struct {
	entries []*models.DirectoryEntry
	err     error
}

func (f *fakeFinder) FetchShops(ctx context.Context, area string) ([]*models.DirectoryEntry, error) {
	return f.entries, f.err
}

type fakeArchive struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeArchive) ArchiveRange(ctx context.Context, site string) (string, string, error) {
	f.mu.Lock()
	f.calls[site]++
	f.mu.Unlock()
	if site == "https://down.at" {
		return "", "", errors.New("timeout")
	}
	return "2015-01-01", "2024-12-31", nil
}

func TestCollect(t *testing.T) {
	finder := &fakeFinder{entries: []*models.DirectoryEntry{
		{Name: "Radwerkstatt", Website: "https://radwerkstatt.at"},
		{Name: "Radwerkstatt Filiale", Website: "https://radwerkstatt.at"},
		{Name: "Down", Website: "https://down.at"},
		{Name: "Offline Shop"},
	}}
	archive := &fakeArchive{calls: map[string]int{}}

	c := NewWith("Wien", utils.NewNopLogger(), utils.NewWorkerPool(2, 0), finder, archive)
	entries, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries; want 4", len(entries))
	}

	if archive.calls["https://radwerkstatt.at"] != 1 {
		t.Errorf("shared website looked up %d times; want 1", archive.calls["https://radwerkstatt.at"])
	}
	if len(archive.calls) != 2 {
		t.Errorf("looked up %d websites; want 2", len(archive.calls))
	}
	for _, e := range entries[:2] {
		if e.ArchiveOldest != "2015-01-01" || e.ArchiveNewest != "2024-12-31" {
			t.Errorf("%s: span = %q .. %q", e.Name, e.ArchiveOldest, e.ArchiveNewest)
		}
	}
	if entries[2].ArchiveOldest != "" || entries[3].ArchiveOldest != "" {
		t.Error("failed or missing lookups should leave the span blank")
	}
}

func TestCollectFinderError(t *testing.T) {
	c := NewWith("Wien", utils.NewNopLogger(), utils.NewWorkerPool(1, 0),
		&fakeFinder{err: errors.New("overpass down")}, &fakeArchive{calls: map[string]int{}})
	if _, err := c.Collect(context.Background()); err == nil {
		t.Error("finder error should be returned")
	}
}

func TestCollectSharesSpanAcrossWebsiteCase(t *testing.T) {
	finder := &fakeFinder{entries: []*models.DirectoryEntry{
		{Name: "Radwerkstatt", Website: "https://radwerkstatt.at"},
		{Name: "Radwerkstatt Filiale", Website: "HTTPS://Radwerkstatt.at"},
	}}
	archive := &fakeArchive{calls: map[string]int{}}

	c := NewWith("Wien", utils.NewNopLogger(), utils.NewWorkerPool(2, 0), finder, archive)
	entries, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(archive.calls) != 1 {
		t.Errorf("looked up %d websites; want 1", len(archive.calls))
	}
	if entries[1].ArchiveOldest != "2015-01-01" {
		t.Errorf("second spelling should share the span, got %q", entries[1].ArchiveOldest)
	}
}

func TestCollectStopsWhenCancelled(t *testing.T) {
	finder := &fakeFinder{entries: []*models.DirectoryEntry{
		{Name: "A", Website: "https://a.at"},
		{Name: "B", Website: "https://b.at"},
	}}
	archive := &fakeArchive{calls: map[string]int{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewWith("Wien", utils.NewNopLogger(), utils.NewWorkerPool(1, 0), finder, archive)
	if _, err := c.Collect(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Collect error = %v; want context.Canceled", err)
	}
	if len(archive.calls) != 0 {
		t.Errorf("no lookups should run after cancel, got %d", len(archive.calls))
	}
}
