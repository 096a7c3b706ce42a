package models

import "time"

// ScatterPoint pairs a first-price date with the relative delta of one shop.
type ScatterPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Name  string    `json:"name"`
}

// Extent is the [Min, Max] domain shared by the map, histogram and scatter color scales.
type Extent struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Trend string

const (
	TrendPositive Trend = "positive"
	TrendNegative Trend = "negative"
	TrendNeutral  Trend = "neutral"
)

// AverageDelta is the mean relative delta in percent, truncated to two decimals.
type AverageDelta struct {
	Percent float64 `json:"percent"`
	Trend   Trend   `json:"trend"`
}

// PriceCoverage counts records by which of the two prices they carry.
type PriceCoverage struct {
	Both        int `json:"both"`
	OnlyFirst   int `json:"onlyFirst"`
	OnlyCurrent int `json:"onlyCurrent"`
	None        int `json:"none"`
}

// RepairGroups counts records by their offers-repair flag.
type RepairGroups struct {
	Yes     int `json:"yes"`
	No      int `json:"no"`
	Unknown int `json:"unknown"`
}

// InsightReport holds the computed analytics over the canonical dataset.
type InsightReport struct {
	TotalRecords  int           `json:"totalRecords"`
	WithDelta     int           `json:"withDelta"`
	Repair        RepairGroups  `json:"repair"`
	Coverage      PriceCoverage `json:"coverage"`
	Average       *AverageDelta `json:"average,omitempty"`
	MedianPercent *float64      `json:"medianPercent,omitempty"`
	DeltaExtent   *Extent       `json:"deltaExtent,omitempty"`
	TopIncreases  []*ShopRecord `json:"topIncreases"`
}
