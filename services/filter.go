package services

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"bikeshop-prices/models"
)

// foldText prepares text for case-insensitive substring matching. Casers
// keep state, so each call gets its own.
func foldText(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Filter returns the records that pass every predicate of settings, in input
// order. Predicates run in a fixed order: text search, the three presence
// filters, the current-price requirement, then the two date ranges.
func Filter(records []*models.ShopRecord, settings models.SelectionSettings) []*models.ShopRecord {
	query := foldText(strings.TrimSpace(settings.Query))
	firstRange := newDateRange(settings.FirstDateFrom, settings.FirstDateTo)
	currentRange := newDateRange(settings.CurrentDateFrom, settings.CurrentDateTo)

	result := make([]*models.ShopRecord, 0, len(records))
	for _, r := range records {
		if query != "" && !matchesQuery(r, query) {
			continue
		}
		if !settings.FirstPrice.Allows(r.FirstPrice != nil) ||
			!settings.FirstPriceAdjusted.Allows(r.FirstPriceInflationAdjusted != nil) ||
			!settings.CurrentPrice.Allows(r.CurrentPrice != nil) {
			continue
		}
		if settings.OnlyWithCurrentPrice && r.CurrentPrice == nil {
			continue
		}
		if !firstRange.contains(r.FirstPriceDate) || !currentRange.contains(r.CurrentPriceDate) {
			continue
		}
		result = append(result, r)
	}
	return result
}

func matchesQuery(r *models.ShopRecord, foldedQuery string) bool {
	if strings.Contains(foldText(r.Name), foldedQuery) {
		return true
	}
	return r.Address != nil && strings.Contains(foldText(*r.Address), foldedQuery)
}

// dateRange is an inclusive range; a nil bound is open on that side.
type dateRange struct {
	from, to *time.Time
}

func newDateRange(from, to string) dateRange {
	var dr dateRange
	if t, ok := ParseDateLoose(from); ok {
		dr.from = &t
	}
	if t, ok := ParseDateLoose(to); ok {
		dr.to = &t
	}
	return dr
}

// ValidateSettings rejects date bounds that are set but do not parse; Filter
// itself would treat them as open.
func ValidateSettings(s models.SelectionSettings) error {
	bounds := []struct{ field, value string }{
		{"firstDateFrom", s.FirstDateFrom},
		{"firstDateTo", s.FirstDateTo},
		{"currentDateFrom", s.CurrentDateFrom},
		{"currentDateTo", s.CurrentDateTo},
	}
	for _, b := range bounds {
		if strings.TrimSpace(b.value) == "" {
			continue
		}
		if _, ok := ParseDateLoose(b.value); !ok {
			return fmt.Errorf("%s: unrecognised date %q", b.field, b.value)
		}
	}
	return nil
}

func (dr dateRange) active() bool {
	return dr.from != nil || dr.to != nil
}

// contains excludes unparseable dates whenever a bound is set.
func (dr dateRange) contains(date string) bool {
	if !dr.active() {
		return true
	}
	t, ok := ParseDateLoose(date)
	if !ok {
		return false
	}
	if dr.from != nil && t.Before(*dr.from) {
		return false
	}
	if dr.to != nil && t.After(*dr.to) {
		return false
	}
	return true
}
