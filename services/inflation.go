package services

import (
	"github.com/shopspring/decimal"

	"bikeshop-prices/models"
)

// ReferenceYear is the year first prices are adjusted to.
const ReferenceYear = 2025

// AustrianCPI is the Statistik Austria consumer price index, base 2015 = 100.
// The 2025 value comes from the OeNB currency calculator.
var AustrianCPI = models.CPITable{
	2015: 100.0,
	2016: 100.9,
	2017: 103.0,
	2018: 105.1,
	2019: 106.7,
	2020: 108.2,
	2021: 111.2,
	2022: 120.7,
	2023: 130.1,
	2024: 134.0,
	2025: 136.78,
}

// AdjustForInflation scales price from baseYear to targetYear money,
// rounded half away from zero to the cent. Years outside the table yield
// ok == false; the table is never extrapolated.
func AdjustForInflation(price float64, baseYear, targetYear int, cpi models.CPITable) (float64, bool) {
	cpiBase, ok := cpi[baseYear]
	if !ok || cpiBase == 0 {
		return 0, false
	}
	cpiTarget, ok := cpi[targetYear]
	if !ok {
		return 0, false
	}

	ratio := decimal.NewFromFloat(cpiTarget).Div(decimal.NewFromFloat(cpiBase))
	adjusted := decimal.NewFromFloat(price).Mul(ratio).Round(2)
	return adjusted.InexactFloat64(), true
}
