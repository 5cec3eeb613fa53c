package metrics

import (
	"fmt"

	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/types"
)

const wastedClicksCalloutThreshold = 10.0

func productsHeadlineStatus(topShare float64) ComponentStatus {
	if topShare > 50 {
		return StatusSuccess
	}
	if topShare >= 30 {
		return StatusWarning
	}
	return StatusCritical
}

func buildProductsMetrics(snap, previous *types.ProductSnapshot, period snapshots.Period) ([]types.DomainMetric, []string) {
	if snap == nil {
		return nil, []string{"missing product snapshot for products metrics"}
	}

	strongPerformers := snap.StarCount + snap.GoodCount
	topShare := 0.0
	if snap.TotalProducts > 0 {
		topShare = float64(strongPerformers) / float64(snap.TotalProducts) * 100
	}

	headline := PageHeadlineData{
		Status:   productsHeadlineStatus(topShare),
		Message:  fmt.Sprintf("%.1f%% of products are star or good", topShare),
		Subtitle: fmt.Sprintf("%s strong performers out of %s", formatCount(int64(strongPerformers)), formatCount(int64(snap.TotalProducts))),
	}

	var prevTotal, prevStar, prevConversions, prevCVR *float64
	if previous != nil {
		prevTotal = fptr(float64(previous.TotalProducts))
		prevStar = fptr(float64(previous.StarCount))
		prevConversions = fptr(previous.TotalConversions)
		prevCVR = previous.AvgCVR
	}

	cards := MetricCardData{Cards: []MetricCardItem{
		card("Total Products", formatCount(int64(snap.TotalProducts)), float64(snap.TotalProducts), prevTotal),
		card("Star Performers", formatCount(int64(snap.StarCount)), float64(snap.StarCount), prevStar),
		card("Avg CVR", formatPercent(deref(snap.AvgCVR)), deref(snap.AvgCVR), prevCVR),
		card("Total Conversions", formatAmount(snap.TotalConversions), snap.TotalConversions, prevConversions),
	}}

	quickStats := QuickStatsData{Items: []QuickStatsItem{
		{Label: "Top 1% Share", Value: formatPercent(snap.Top1PctConversionsShare), Color: "#10b981"},
		{Label: "Top 5% Share", Value: formatPercent(snap.Top5PctConversionsShare), Color: "#10b981"},
		{Label: "Top 10% Share", Value: formatPercent(snap.Top10PctConversionsShare), Color: "#10b981"},
		{Label: "Wasted Clicks", Value: formatPercent(snap.WastedClicksPercentage), Color: "#f59e0b"},
	}}

	components := []component{
		{types.ComponentPageHeadline, headline},
		{types.ComponentMetricCard, cards},
		{types.ComponentQuickStats, quickStats},
	}

	if snap.WastedClicksPercentage > wastedClicksCalloutThreshold {
		components = append(components, component{types.ComponentContextualInfo, ContextualInfoData{
			Title: "Wasted Clicks Warning",
			Style: "warning",
			Items: []ContextualInfoItem{
				{Label: "Products with wasted clicks", Text: formatCount(int64(snap.ProductsWithWastedClicks))},
				{Label: "Total wasted clicks", Text: formatCount(snap.TotalWastedClicks)},
			},
		}})
	}

	records, err := buildRecords(snap.RetailerID, PageProducts, snap.ID, period, components...)
	if err != nil {
		return nil, []string{err.Error()}
	}
	return records, nil
}
