package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bikeshop-prices/models"
	"bikeshop-prices/utils"
)

// shopQuery selects every bicycle shop inside an administrative area. Ways
// and relations are reduced to their center point.
const shopQuery = `[out:json][timeout:25];
area["name"=%q]["boundary"="administrative"]["admin_level"="6"]->.searchArea;
(
  node["shop"="bicycle"](area.searchArea);
  way["shop"="bicycle"](area.searchArea);
  relation["shop"="bicycle"](area.searchArea);
);
out center;`

// Client talks to an Overpass API interpreter endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	retry    *utils.RetryConfig
	logger   *utils.Logger
}

func NewClient(endpoint string, retry *utils.RetryConfig, logger *utils.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 60 * time.Second},
		retry:    retry,
		logger:   logger,
	}
}

type overpassResponse struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *point            `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FetchShops returns the bicycle shops of area in Overpass order.
func (c *Client) FetchShops(ctx context.Context, area string) ([]*models.DirectoryEntry, error) {
	var resp overpassResponse

	err := c.retry.Do(ctx, "overpass-query", func(ctx context.Context) error {
		form := url.Values{"data": {fmt.Sprintf(shopQuery, area)}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		res, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("post: %w", err)
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %s", res.Status)
		}
		resp = overpassResponse{}
		return json.NewDecoder(res.Body).Decode(&resp)
	})
	if err != nil {
		return nil, fmt.Errorf("osm: fetch shops in %q: %w", area, err)
	}

	entries := make([]*models.DirectoryEntry, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		entries = append(entries, entryFrom(el))
	}
	c.logger.Info("[osm] %d bicycle shops found in %s", len(entries), area)
	return entries, nil
}

func entryFrom(el element) *models.DirectoryEntry {
	tags := el.Tags
	address := fmt.Sprintf("%s %s, %s %s",
		tags["addr:street"], tags["addr:housenumber"], tags["addr:postcode"], tags["addr:city"])

	e := &models.DirectoryEntry{
		Name:    tags["name"],
		Address: strings.Trim(address, ", "),
		Website: tags["website"],
		Lat:     el.Lat,
		Lon:     el.Lon,
	}
	if e.Lat == nil && el.Center != nil {
		lat, lon := el.Center.Lat, el.Center.Lon
		e.Lat, e.Lon = &lat, &lon
	}
	return e
}
