package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"bikeshop-prices/config"
	"bikeshop-prices/models"
	"bikeshop-prices/scraper/osm"
	"bikeshop-prices/scraper/wayback"
	"bikeshop-prices/utils"
)

// ShopFinder lists the shops of an area.
type ShopFinder interface {
	FetchShops(ctx context.Context, area string) ([]*models.DirectoryEntry, error)
}

// ArchiveLookup reports the capture span of a website.
type ArchiveLookup interface {
	ArchiveRange(ctx context.Context, site string) (oldest, newest string, err error)
}

// Collector builds the shop directory: OpenStreetMap shops enriched with
// their Wayback Machine capture span.
type Collector struct {
	area    string
	logger  *utils.Logger
	pool    *utils.WorkerPool
	finder  ShopFinder
	archive ArchiveLookup
}

// New creates a Collector talking to the endpoints in cfg.
func New(cfg *config.Config, logger *utils.Logger) *Collector {
	retry := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
		Logger:      logger,
	}
	return NewWith(cfg.OverpassArea, logger,
		utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		osm.NewClient(cfg.OverpassURL, retry, logger),
		wayback.NewClient(cfg.WaybackCDXURL, retry))
}

// NewWith wires a Collector from explicit collaborators.
func NewWith(area string, logger *utils.Logger, pool *utils.WorkerPool, finder ShopFinder, archive ArchiveLookup) *Collector {
	return &Collector{area: area, logger: logger, pool: pool, finder: finder, archive: archive}
}

type archiveSpan struct {
	oldest, newest string
}

// Collect fetches the shops and looks up each distinct website once on the
// rate-limited pool. A failed lookup leaves that shop's span blank.
func (c *Collector) Collect(ctx context.Context) ([]*models.DirectoryEntry, error) {
	c.logger.Info("[collector] Collecting bicycle shops in %s", c.area)

	entries, err := c.finder.FetchShops(ctx, c.area)
	if err != nil {
		return nil, fmt.Errorf("collector: %w", err)
	}

	seen := utils.NewKeySet()
	var mu sync.Mutex
	spans := make(map[string]archiveSpan)

	for _, e := range entries {
		site := e.Website
		if site == "" || !seen.Add(site) {
			continue
		}
		queued := c.pool.Submit(ctx, func(ctx context.Context) {
			oldest, newest, err := c.archive.ArchiveRange(ctx, site)
			if err != nil {
				c.logger.Warn("[collector] Archive lookup failed for %s: %v", site, err)
				return
			}
			mu.Lock()
			spans[siteKey(site)] = archiveSpan{oldest: oldest, newest: newest}
			mu.Unlock()
		})
		if !queued {
			break
		}
	}
	c.pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collector: interrupted after %d lookups: %w", len(spans), err)
	}

	for _, e := range entries {
		if span, ok := spans[siteKey(e.Website)]; ok {
			e.ArchiveOldest, e.ArchiveNewest = span.oldest, span.newest
		}
	}

	c.logger.Info("[collector] %d shops collected, %d distinct websites looked up", len(entries), seen.Size())
	return entries, nil
}

// siteKey matches the folding KeySet applies to websites.
func siteKey(site string) string {
	return strings.ToLower(strings.TrimSpace(site))
}
