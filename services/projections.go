package services

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"bikeshop-prices/models"
)

// HistogramValues returns the finite relative deltas of records.
func HistogramValues(records []*models.ShopRecord) []float64 {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := finiteDelta(r); ok {
			values = append(values, v)
		}
	}
	return values
}

// ScatterPoints pairs each record's first-price date with its relative delta.
// Records without a real, parseable date or a finite delta are skipped; the
// sentinel date is a placeholder and is never plotted.
func ScatterPoints(records []*models.ShopRecord) []models.ScatterPoint {
	points := make([]models.ScatterPoint, 0, len(records))
	for _, r := range records {
		v, ok := finiteDelta(r)
		if !ok || r.FirstPriceDate == models.SentinelDate {
			continue
		}
		t, ok := ParseDateLoose(r.FirstPriceDate)
		if !ok {
			continue
		}
		points = append(points, models.ScatterPoint{Date: t, Value: v, Name: r.Name})
	}
	return points
}

// DeltaExtent returns the min/max relative delta, the shared color-scale domain.
func DeltaExtent(records []*models.ShopRecord) (models.Extent, bool) {
	values := HistogramValues(records)
	if len(values) == 0 {
		return models.Extent{}, false
	}
	ext := models.Extent{Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		ext.Min = math.Min(ext.Min, v)
		ext.Max = math.Max(ext.Max, v)
	}
	return ext, true
}

// AverageDelta is the mean relative delta in percent, truncated (not
// rounded) to two decimals.
func AverageDelta(records []*models.ShopRecord) (models.AverageDelta, bool) {
	values := HistogramValues(records)
	if len(values) == 0 {
		return models.AverageDelta{}, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	scaled := sum / float64(len(values)) * 100
	if !isFinite(scaled) {
		return models.AverageDelta{}, false
	}
	percent := decimal.NewFromFloat(scaled).Truncate(2).InexactFloat64()
	return models.AverageDelta{Percent: percent, Trend: trendOf(percent)}, true
}

// MedianDeltaPercent is the median relative delta in percent, rounded to cents.
func MedianDeltaPercent(records []*models.ShopRecord) (float64, bool) {
	values := HistogramValues(records)
	if len(values) == 0 {
		return 0, false
	}
	sort.Float64s(values)
	mid := len(values) / 2
	median := values[mid]
	if len(values)%2 == 0 {
		median = (values[mid-1] + values[mid]) / 2
	}
	scaled := median * 100
	if !isFinite(scaled) {
		return 0, false
	}
	return decimal.NewFromFloat(scaled).Round(2).InexactFloat64(), true
}

func trendOf(percent float64) models.Trend {
	switch {
	case percent > 0:
		return models.TrendPositive
	case percent < 0:
		return models.TrendNegative
	default:
		return models.TrendNeutral
	}
}

func finiteDelta(r *models.ShopRecord) (float64, bool) {
	if r.DeltaVsFirstAdjPercentage == nil {
		return 0, false
	}
	v := *r.DeltaVsFirstAdjPercentage
	if !isFinite(v) {
		return 0, false
	}
	return v, true
}

// isFinite guards decimal conversions; a finite delta near the float64
// limit still overflows once scaled to percent.
func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
