package services

import (
	"math"
	"regexp"
	"strings"

	"bikeshop-prices/models"
	"bikeshop-prices/utils"
)

// Candidate header spellings per logical field, in priority order.
var (
	colName               = []string{"name"}
	colAddress            = []string{"address"}
	colWebsite            = []string{"website"}
	colOffersRepair       = []string{"offers repair", "offers_repair"}
	colFirstPrice         = []string{"First Price"}
	colFirstPriceAdjusted = []string{"First Price (Inflation adjusted)"}
	colFirstPriceDate     = []string{"First Price Date"}
	colFirstPriceSource   = []string{"First Price Source"}
	colCurrentPrice       = []string{"Current Price"}
	colCurrentPriceDate   = []string{"Current Price Date"}
	colCurrentPriceSource = []string{"Current Price Source"}
	colLat                = []string{"lat", "latitude"}
	colLon                = []string{"lon", "lng", "longitude"}
)

// repairYesRegexp catches free-text answers like "yes - walk-in only".
var repairYesRegexp = regexp.MustCompile(`(?i)^yes`)

// Normalizer turns raw table rows into canonical ShopRecords.
type Normalizer struct {
	logger     *utils.Logger
	cpi        models.CPITable
	targetYear int
}

// NewNormalizer creates a Normalizer adjusting first prices to targetYear.
func NewNormalizer(logger *utils.Logger, cpi models.CPITable, targetYear int) *Normalizer {
	return &Normalizer{logger: logger, cpi: cpi, targetYear: targetYear}
}

// Normalize produces one record per row with a non-blank name, preserving
// input order. Duplicate shops are kept; they are only counted in the report.
func (n *Normalizer) Normalize(rows []models.RawRow) ([]*models.ShopRecord, models.LoadReport) {
	report := models.LoadReport{RowsRead: len(rows)}
	result := make([]*models.ShopRecord, 0, len(rows))
	keys := utils.NewKeySet()

	for _, row := range rows {
		rec, ok := n.normalizeRow(row)
		if !ok {
			report.RowsDropped++
			continue
		}
		if !keys.Add(shopKey(rec)) {
			report.DuplicateKeys++
		}
		result = append(result, rec)
	}
	report.RecordsKept = len(result)

	n.logger.Info("[normalizer] Normalized %d rows → %d records (dropped %d, duplicate shops %d)",
		report.RowsRead, report.RecordsKept, report.RowsDropped, report.DuplicateKeys)
	return result, report
}

func (n *Normalizer) normalizeRow(row models.RawRow) (*models.ShopRecord, bool) {
	name := strings.TrimSpace(cell(row, colName))
	if name == "" {
		return nil, false
	}

	rec := &models.ShopRecord{
		Name:               name,
		Address:            optionalText(row, colAddress),
		FirstPriceDate:     dateOrSentinel(row, colFirstPriceDate),
		FirstPrice:         optionalPrice(row, colFirstPrice),
		FirstPriceSource:   optionalText(row, colFirstPriceSource),
		CurrentPriceDate:   dateOrSentinel(row, colCurrentPriceDate),
		CurrentPrice:       optionalPrice(row, colCurrentPrice),
		CurrentPriceSource: optionalText(row, colCurrentPriceSource),
		Lat:                optionalNumber(row, colLat),
		Lon:                optionalNumber(row, colLon),
	}

	if raw, ok := row.Lookup(colWebsite...); ok {
		if u, ok := NormalizeURL(raw); ok {
			rec.Website = &u
		}
	}

	if raw, ok := row.Lookup(colOffersRepair...); ok {
		offers := repairYesRegexp.MatchString(strings.TrimSpace(raw)) || ParseBoolean(raw)
		rec.OffersRepair = &offers
	}

	rec.FirstPriceInflationAdjusted = optionalPrice(row, colFirstPriceAdjusted)
	if rec.FirstPriceInflationAdjusted == nil && rec.FirstPrice != nil {
		rec.FirstPriceInflationAdjusted = n.adjust(*rec.FirstPrice, rec.FirstPriceDate)
	}

	if rec.CurrentPrice != nil && rec.FirstPriceInflationAdjusted != nil {
		delta := *rec.CurrentPrice - *rec.FirstPriceInflationAdjusted
		rec.DeltaVsFirstAdj = &delta
		// A zero current price has no meaningful relative delta.
		if pct := delta / *rec.CurrentPrice; !math.IsInf(pct, 0) && !math.IsNaN(pct) {
			rec.DeltaVsFirstAdjPercentage = &pct
		}
	}

	return rec, true
}

func (n *Normalizer) adjust(price float64, date string) *float64 {
	t, ok := ParseDateLoose(date)
	if !ok {
		return nil
	}
	adjusted, ok := AdjustForInflation(price, t.Year(), n.targetYear, n.cpi)
	if !ok {
		n.logger.Debug("[normalizer] No CPI for %d, first price %.2f left unadjusted", t.Year(), price)
		return nil
	}
	return &adjusted
}

// shopKey identifies a shop for duplicate counting; KeySet folds case.
func shopKey(rec *models.ShopRecord) string {
	if rec.Address == nil {
		return rec.Name
	}
	return rec.Name + "|" + *rec.Address
}

func cell(row models.RawRow, keys []string) string {
	v, _ := row.Lookup(keys...)
	return v
}

func optionalText(row models.RawRow, keys []string) *string {
	v := strings.TrimSpace(cell(row, keys))
	if v == "" {
		return nil
	}
	return &v
}

func optionalPrice(row models.RawRow, keys []string) *float64 {
	if f, ok := ParsePrice(cell(row, keys)); ok {
		return &f
	}
	return nil
}

func optionalNumber(row models.RawRow, keys []string) *float64 {
	if f, ok := ParseNumber(cell(row, keys)); ok {
		return &f
	}
	return nil
}

func dateOrSentinel(row models.RawRow, keys []string) string {
	if v := strings.TrimSpace(cell(row, keys)); v != "" {
		return v
	}
	return models.SentinelDate
}
