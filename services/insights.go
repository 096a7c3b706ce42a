package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"bikeshop-prices/models"
	"bikeshop-prices/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(records []*models.ShopRecord) *models.InsightReport {
	report := &models.InsightReport{}
	if len(records) == 0 {
		return report
	}

	report.TotalRecords = len(records)

	var withDelta []*models.ShopRecord
	for _, r := range records {
		switch {
		case r.OffersRepair == nil:
			report.Repair.Unknown++
		case *r.OffersRepair:
			report.Repair.Yes++
		default:
			report.Repair.No++
		}

		hasFirst, hasCurrent := r.FirstPrice != nil, r.CurrentPrice != nil
		switch {
		case hasFirst && hasCurrent:
			report.Coverage.Both++
		case hasFirst:
			report.Coverage.OnlyFirst++
		case hasCurrent:
			report.Coverage.OnlyCurrent++
		default:
			report.Coverage.None++
		}

		if _, ok := finiteDelta(r); ok {
			withDelta = append(withDelta, r)
		}
	}
	report.WithDelta = len(withDelta)

	if avg, ok := AverageDelta(records); ok {
		report.Average = &avg
	}
	if median, ok := MedianDeltaPercent(records); ok {
		report.MedianPercent = &median
	}
	if ext, ok := DeltaExtent(records); ok {
		report.DeltaExtent = &ext
	}

	// Top 5 by relative increase
	sort.SliceStable(withDelta, func(i, j int) bool {
		return *withDelta[i].DeltaVsFirstAdjPercentage > *withDelta[j].DeltaVsFirstAdjPercentage
	})
	if len(withDelta) > 5 {
		report.TopIncreases = withDelta[:5]
	} else {
		report.TopIncreases = withDelta
	}

	s.logger.Debug("[insights] %d records, %d with a delta", report.TotalRecords, report.WithDelta)
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🚲 BICYCLE REPAIR PRICE INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Shops in dataset       : \033[1m%d\033[0m\n", r.TotalRecords)
	fmt.Fprintf(w, "  Offers repair          : \033[1m%d\033[0m yes / %d no / %d unknown\n",
		r.Repair.Yes, r.Repair.No, r.Repair.Unknown)
	fmt.Fprintln(w)

	// Coverage
	fmt.Fprintf(w, "\033[1;33m  Price Data Coverage\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Both prices            : %d\n", r.Coverage.Both)
	fmt.Fprintf(w, "  Only first price       : %d\n", r.Coverage.OnlyFirst)
	fmt.Fprintf(w, "  Only current price     : %d\n", r.Coverage.OnlyCurrent)
	fmt.Fprintf(w, "  Neither price          : %d\n", r.Coverage.None)
	fmt.Fprintln(w)

	// Deltas
	fmt.Fprintf(w, "\033[1;33m  Change vs. Inflation-Adjusted First Price\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.Average == nil {
		fmt.Fprintf(w, "  No comparable price pairs\n")
	} else {
		fmt.Fprintf(w, "  Comparable shops : \033[1m%d\033[0m\n", r.WithDelta)
		fmt.Fprintf(w, "  Average change   : \033[1;%sm%.2f%%\033[0m (%s)\n",
			trendColor(r.Average.Trend), r.Average.Percent, r.Average.Trend)
		if r.MedianPercent != nil {
			fmt.Fprintf(w, "  Median change    : %.2f%%\n", *r.MedianPercent)
		}
		if r.DeltaExtent != nil {
			fmt.Fprintf(w, "  Range            : %.2f%% … %.2f%%\n",
				r.DeltaExtent.Min*100, r.DeltaExtent.Max*100)
		}
	}
	fmt.Fprintln(w)

	// ── TOP 5 INCREASES ──────────────────────────────────────────────────
	fmt.Fprintf(w, "\033[1;33m  Top 5 Largest Increases\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopIncreases) == 0 {
		fmt.Fprintf(w, "  No comparable shops found\n")
	} else {
		for i, rec := range r.TopIncreases {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;31m%+.2f%%\033[0m\n",
				i+1, truncate(rec.Name, 38), *rec.DeltaVsFirstAdjPercentage*100)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func trendColor(t models.Trend) string {
	switch t {
	case models.TrendPositive:
		return "31"
	case models.TrendNegative:
		return "32"
	default:
		return "37"
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
