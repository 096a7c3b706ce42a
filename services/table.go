package services

import (
	"fmt"
	"sort"
	"strings"

	"bikeshop-prices/models"
)

// SortKey names a sortable table column.
type SortKey string

const (
	SortByName               SortKey = "name"
	SortByAddress            SortKey = "address"
	SortByFirstPrice         SortKey = "firstPrice"
	SortByFirstPriceAdjusted SortKey = "firstPriceInflationAdjusted"
	SortByFirstPriceDate     SortKey = "firstPriceDate"
	SortByCurrentPrice       SortKey = "currentPrice"
	SortByCurrentPriceDate   SortKey = "currentPriceDate"
	SortByDelta              SortKey = "deltaVsFirstAdj"
	SortByDeltaPercentage    SortKey = "deltaVsFirstAdjPercentage"
)

// ParseSortKey validates a column name coming from a request.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortByName, SortByAddress, SortByFirstPrice, SortByFirstPriceAdjusted, SortByFirstPriceDate,
		SortByCurrentPrice, SortByCurrentPriceDate, SortByDelta, SortByDeltaPercentage:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort column %q", s)
}

// sortValue is one cell projected for comparison; absent cells sort last in
// both directions.
type sortValue struct {
	present bool
	textual bool
	num     float64
	text    string
}

// SortRecords returns a stably sorted copy of records.
func SortRecords(records []*models.ShopRecord, key SortKey, descending bool) []*models.ShopRecord {
	type row struct {
		rec *models.ShopRecord
		val sortValue
	}
	rows := make([]row, len(records))
	for i, r := range records {
		rows[i] = row{rec: r, val: sortValueOf(r, key)}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].val, rows[j].val
		if a.present != b.present {
			return a.present
		}
		if !a.present {
			return false
		}
		c := compareSortValues(a, b)
		if descending {
			return c > 0
		}
		return c < 0
	})

	sorted := make([]*models.ShopRecord, len(rows))
	for i, r := range rows {
		sorted[i] = r.rec
	}
	return sorted
}

func compareSortValues(a, b sortValue) int {
	if a.textual {
		return strings.Compare(strings.ToLower(a.text), strings.ToLower(b.text))
	}
	switch {
	case a.num < b.num:
		return -1
	case a.num > b.num:
		return 1
	default:
		return 0
	}
}

func sortValueOf(r *models.ShopRecord, key SortKey) sortValue {
	switch key {
	case SortByName:
		return sortValue{present: true, textual: true, text: r.Name}
	case SortByAddress:
		if r.Address == nil {
			return sortValue{}
		}
		return sortValue{present: true, textual: true, text: *r.Address}
	case SortByFirstPrice:
		return numeric(r.FirstPrice)
	case SortByFirstPriceAdjusted:
		return numeric(r.FirstPriceInflationAdjusted)
	case SortByCurrentPrice:
		return numeric(r.CurrentPrice)
	case SortByDelta:
		return numeric(r.DeltaVsFirstAdj)
	case SortByDeltaPercentage:
		return numeric(r.DeltaVsFirstAdjPercentage)
	case SortByFirstPriceDate:
		return dateValue(r.FirstPriceDate)
	case SortByCurrentPriceDate:
		return dateValue(r.CurrentPriceDate)
	}
	return sortValue{}
}

func numeric(p *float64) sortValue {
	if p == nil {
		return sortValue{}
	}
	return sortValue{present: true, num: *p}
}

// dateValue keeps the sentinel date sortable: it parses to year 1000 and so
// lands before every real date.
func dateValue(s string) sortValue {
	t, ok := ParseDateLoose(s)
	if !ok {
		return sortValue{}
	}
	return sortValue{present: true, num: float64(t.Unix())}
}
