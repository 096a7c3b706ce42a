package models

import "strings"

// SentinelDate stands in for a missing price date so that sorting and range
// filtering stay total. It sorts before every real date and is not a real
// observation.
const SentinelDate = "1000-01-01"

// RawRow is one untyped row of the input table, keyed by header name.
// Column presence is not uniform across rows.
type RawRow map[string]string

// Lookup returns the first non-blank value among keys, tried in order.
func (r RawRow) Lookup(keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok {
			continue
		}
		if strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	// A present-but-blank column is still "present" for callers that
	// distinguish blank from missing (boolean cells).
	for _, k := range keys {
		if v, ok := r[k]; ok {
			return v, true
		}
	}
	return "", false
}

// ShopRecord is the canonical, immutable record for one input row.
// Optional fields are nil when absent.
type ShopRecord struct {
	Name         string  `json:"name"`
	Address      *string `json:"address,omitempty"`
	Website      *string `json:"website,omitempty"`
	OffersRepair *bool   `json:"offersRepair,omitempty"`

	FirstPriceDate              string   `json:"firstPriceDate"`
	FirstPrice                  *float64 `json:"firstPrice,omitempty"`
	FirstPriceInflationAdjusted *float64 `json:"firstPriceInflationAdjusted,omitempty"`
	FirstPriceSource            *string  `json:"firstPriceSource,omitempty"`

	CurrentPriceDate   string   `json:"currentPriceDate"`
	CurrentPrice       *float64 `json:"currentPrice,omitempty"`
	CurrentPriceSource *string  `json:"currentPriceSource,omitempty"`

	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`

	// DeltaVsFirstAdj is set when both the current and the adjusted first
	// price are. DeltaVsFirstAdjPercentage is the delta over the current
	// price and stays nil when that price is zero, since the ratio would not
	// be finite.
	DeltaVsFirstAdj           *float64 `json:"deltaVsFirstAdj,omitempty"`
	DeltaVsFirstAdjPercentage *float64 `json:"deltaVsFirstAdjPercentage,omitempty"`
}

// CPITable maps a calendar year to its consumer price index.
type CPITable map[int]float64

// LoadReport summarises one normalization pass.
type LoadReport struct {
	RowsRead      int `json:"rowsRead"`
	RecordsKept   int `json:"recordsKept"`
	RowsDropped   int `json:"rowsDropped"`
	DuplicateKeys int `json:"duplicateKeys"`
}
