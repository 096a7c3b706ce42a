package pricepage

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"bikeshop-prices/config"
	"bikeshop-prices/models"
	"bikeshop-prices/services"
	"bikeshop-prices/utils"
)

var (
	// priceTextRegexp matches euro amounts written either way round, including
	// the Austrian ",-" for whole euros: "€ 49,90", "25,- €", "EUR 1.200".
	priceTextRegexp = regexp.MustCompile(`(?i)(?:€|\beur)\s*\d{1,4}(?:\.\d{3})*(?:,(?:\d{1,2}|-))?|\d{1,4}(?:\.\d{3})*(?:,(?:\d{1,2}|-))?\s*(?:€|eur\b)`)
	euroWordRegexp  = regexp.MustCompile(`(?i)eur`)
)

const snippetLimit = 120

// Prober opens shop websites in headless Chrome and collects price-looking
// text for manual curation of the current price column.
type Prober struct {
	cfg    *config.Config
	logger *utils.Logger
	pool   *utils.WorkerPool
	retry  *utils.RetryConfig
}

// New creates a ready-to-use Prober.
func New(cfg *config.Config, logger *utils.Logger) *Prober {
	return &Prober{
		cfg:    cfg,
		logger: logger,
		pool:   utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			MaxDelay:    20 * time.Second,
			Logger:      logger,
		},
	}
}

// Probe visits the website of every record that has one. Candidates are
// returned in record order; unreachable sites are logged and skipped.
func (p *Prober) Probe(ctx context.Context, records []*models.ShopRecord) ([]*models.PriceCandidate, error) {
	chromeBin := findChromeBinary(p.cfg.ChromeBin)
	p.logger.Info("[probe] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("probe: start browser: %w", err)
	}

	var mu sync.Mutex
	perRecord := make([][]*models.PriceCandidate, len(records))

	for i, rec := range records {
		if rec.Website == nil {
			continue
		}
		queued := p.pool.Submit(browserCtx, func(ctx context.Context) {
			text, err := p.pageText(ctx, *rec.Website)
			if err != nil {
				p.logger.Warn("[probe] %s (%s) failed: %v", rec.Name, *rec.Website, err)
				return
			}
			found := ExtractCandidates(strings.Split(text, "\n"))
			for _, c := range found {
				c.ShopName, c.Website = rec.Name, *rec.Website
			}
			mu.Lock()
			perRecord[i] = found
			mu.Unlock()
			p.logger.Debug("[probe] %s: %d candidates", rec.Name, len(found))
		})
		if !queued {
			break
		}
	}
	p.pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("probe: interrupted: %w", err)
	}

	var out []*models.PriceCandidate
	for _, found := range perRecord {
		out = append(out, found...)
	}
	p.logger.Info("[probe] %d price candidates across %d records", len(out), len(records))
	return out, nil
}

// pageText loads url in a new tab and returns the rendered body text.
func (p *Prober) pageText(browserCtx context.Context, url string) (string, error) {
	var text string
	err := p.retry.Do(browserCtx, "probe-page", func(ctx context.Context) error {
		tabCtx, cancel := chromedp.NewContext(ctx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, 45*time.Second)
		defer cancelTimeout()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(url),
			chromedp.Sleep(3*time.Second),
			chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &text),
		)
	})
	return text, err
}

// ExtractCandidates finds euro amounts in lines of page text. Amounts that do
// not parse to a positive price are ignored.
func ExtractCandidates(lines []string) []*models.PriceCandidate {
	var out []*models.PriceCandidate
	for _, line := range lines {
		line = strings.TrimSpace(line)
		for _, m := range priceTextRegexp.FindAllString(line, -1) {
			raw := strings.ReplaceAll(euroWordRegexp.ReplaceAllString(m, ""), ",-", "")
			v, ok := services.ParsePrice(raw)
			if !ok || v <= 0 {
				continue
			}
			out = append(out, &models.PriceCandidate{Snippet: snippet(line), Value: v})
		}
	}
	return out
}

func snippet(line string) string {
	runes := []rune(line)
	if len(runes) <= snippetLimit {
		return line
	}
	return string(runes[:snippetLimit-3]) + "..."
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
