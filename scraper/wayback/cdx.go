package wayback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"bikeshop-prices/utils"
)

// Client queries the Wayback Machine CDX index.
type Client struct {
	endpoint string
	http     *http.Client
	retry    *utils.RetryConfig
}

func NewClient(endpoint string, retry *utils.RetryConfig) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
		retry:    retry,
	}
}

// ArchiveRange returns the first and last capture dates of site as
// YYYY-MM-DD. Both are empty when the site was never archived.
func (c *Client) ArchiveRange(ctx context.Context, site string) (oldest, newest string, err error) {
	if site == "" {
		return "", "", nil
	}

	var rows [][]string
	err = c.retry.Do(ctx, "wayback-cdx", func(ctx context.Context) error {
		q := url.Values{"url": {site}, "output": {"json"}}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		res, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("get: %w", err)
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %s", res.Status)
		}
		rows = nil
		return json.NewDecoder(res.Body).Decode(&rows)
	})
	if err != nil {
		return "", "", fmt.Errorf("wayback: captures of %q: %w", site, err)
	}

	timestamps := captureTimestamps(rows)
	if len(timestamps) == 0 {
		return "", "", nil
	}
	return cdxDate(timestamps[0]), cdxDate(timestamps[len(timestamps)-1]), nil
}

// captureTimestamps skips the header row and returns sorted 14-digit timestamps.
func captureTimestamps(rows [][]string) []string {
	if len(rows) < 2 {
		return nil
	}
	out := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) > 1 && len(row[1]) >= 8 {
			out = append(out, row[1])
		}
	}
	sort.Strings(out)
	return out
}

func cdxDate(ts string) string {
	return ts[:4] + "-" + ts[4:6] + "-" + ts[6:8]
}
