package metrics

import (
	"fmt"

	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/types"
)

// Tier colors shared with the retailer UI palette.
const (
	colorTierStrong   = "#0F766E"
	colorTierWarning  = "#B45309"
	colorTierCritical = "#991B1B"
)

func keywordsHeadlineStatus(highShare float64) ComponentStatus {
	if highShare > 60 {
		return StatusSuccess
	}
	if highShare >= 40 {
		return StatusWarning
	}
	return StatusCritical
}

func buildKeywordsMetrics(snap, previous *types.KeywordsSnapshot, period snapshots.Period) ([]types.DomainMetric, []string) {
	if snap == nil {
		return nil, []string{"missing keywords snapshot for keywords metrics"}
	}

	highPerformers := snap.TierStarCount + snap.TierStrongCount
	highShare := 0.0
	if snap.TotalKeywords > 0 {
		highShare = float64(highPerformers) / float64(snap.TotalKeywords) * 100
	}

	headline := PageHeadlineData{
		Status:   keywordsHeadlineStatus(highShare),
		Message:  fmt.Sprintf("%.1f%% of keywords are star or strong", highShare),
		Subtitle: fmt.Sprintf("%s high performers out of %s", formatCount(int64(highPerformers)), formatCount(int64(snap.TotalKeywords))),
	}

	var prevKeywords, prevHigh, prevImpressions, prevCVR *float64
	if previous != nil {
		prevKeywords = fptr(float64(previous.TotalKeywords))
		prevHigh = fptr(float64(previous.TierStarCount + previous.TierStrongCount))
		prevImpressions = fptr(float64(previous.TotalImpressions))
		prevCVR = previous.OverallCVR
	}

	cards := MetricCardData{Cards: []MetricCardItem{
		card("Total Keywords", formatCount(int64(snap.TotalKeywords)), float64(snap.TotalKeywords), prevKeywords),
		card("High Performers", formatCount(int64(highPerformers)), float64(highPerformers), prevHigh),
		card("Avg CVR", formatPercent(deref(snap.OverallCVR)), deref(snap.OverallCVR), prevCVR),
		card("Total Impressions", formatCount(snap.TotalImpressions), float64(snap.TotalImpressions), prevImpressions),
	}}

	quickStats := QuickStatsData{Items: []QuickStatsItem{
		{Label: "Star Tier", Value: formatCount(int64(snap.TierStarCount)), Color: colorTierStrong},
		{Label: "Strong Tier", Value: formatCount(int64(snap.TierStrongCount)), Color: colorTierStrong},
		{Label: "Underperforming", Value: formatCount(int64(snap.TierUnderperformingCount)), Color: colorTierWarning},
		{Label: "Poor", Value: formatCount(int64(snap.TierPoorCount)), Color: colorTierCritical},
	}}

	records, err := buildRecords(snap.RetailerID, PageKeywords, snap.ID, period,
		component{types.ComponentPageHeadline, headline},
		component{types.ComponentMetricCard, cards},
		component{types.ComponentQuickStats, quickStats},
	)
	if err != nil {
		return nil, []string{err.Error()}
	}
	return records, nil
}
