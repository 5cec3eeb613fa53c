package metrics

import (
	"fmt"
	"math"

	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/types"
)

func overviewHeadlineStatus(gmvGrowth, roi float64) ComponentStatus {
	if gmvGrowth > 10 && roi > 5 {
		return StatusSuccess
	}
	if gmvGrowth > 0 || roi > 0 {
		return StatusWarning
	}
	return StatusCritical
}

// buildOverviewMetrics derives the overview page from the keywords snapshot,
// which is the closest available proxy for overall demand.
func buildOverviewMetrics(snap, previous *types.KeywordsSnapshot, period snapshots.Period) ([]types.DomainMetric, []string) {
	if snap == nil {
		return nil, []string{"missing keywords snapshot for overview metrics"}
	}

	var prevConversions, prevKeywords, prevImpressions, prevHigh, prevCVR *float64
	if previous != nil {
		prevConversions = fptr(previous.TotalConversions)
		prevKeywords = fptr(float64(previous.TotalKeywords))
		prevImpressions = fptr(float64(previous.TotalImpressions))
		prevHigh = fptr(float64(previous.TierStarCount + previous.TierStrongCount))
		prevCVR = previous.OverallCVR
	}

	gmvGrowth := 0.0
	if previous != nil {
		if change := percentChange(snap.TotalConversions, prevConversions); change != nil {
			gmvGrowth = *change
		}
	}
	roi := deref(snap.OverallCVR)

	direction := "up"
	if gmvGrowth < 0 {
		direction = "down"
	}
	headline := PageHeadlineData{
		Status:   overviewHeadlineStatus(gmvGrowth, roi),
		Message:  fmt.Sprintf("GMV %s %.1f%% in %s", direction, math.Abs(gmvGrowth), period.RangeStart.Format("January 2006")),
		Subtitle: fmt.Sprintf("ROI: %s, %s total keywords", formatPercent(roi), formatCount(int64(snap.TotalKeywords))),
	}

	highPerformers := snap.TierStarCount + snap.TierStrongCount
	cards := MetricCardData{Cards: []MetricCardItem{
		card("Total Keywords", formatCount(int64(snap.TotalKeywords)), float64(snap.TotalKeywords), prevKeywords),
		card("High Performers", formatCount(int64(highPerformers)), float64(highPerformers), prevHigh),
		card("Avg CVR", formatPercent(deref(snap.OverallCVR)), deref(snap.OverallCVR), prevCVR),
		card("Total Impressions", formatCount(snap.TotalImpressions), float64(snap.TotalImpressions), prevImpressions),
	}}

	records, err := buildRecords(snap.RetailerID, PageOverview, snap.ID, period,
		component{types.ComponentPageHeadline, headline},
		component{types.ComponentMetricCard, cards},
	)
	if err != nil {
		return nil, []string{err.Error()}
	}
	return records, nil
}
