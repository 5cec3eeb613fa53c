package metrics

import (
	"encoding/json"
	"fmt"

	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/types"
)

const brokenCalloutLimit = 3

func categoriesHeadlineStatus(healthyShare float64) ComponentStatus {
	if healthyShare > 70 {
		return StatusSuccess
	}
	if healthyShare >= 50 {
		return StatusWarning
	}
	return StatusCritical
}

// brokenOffenders pulls the top broken category paths out of the classifier's
// health summary. Bad or absent JSON yields an empty callout, not an error.
func brokenOffenders(summary []byte, limit int) []string {
	if len(summary) == 0 {
		return nil
	}
	var parsed map[string][]struct {
		CategoryPath string `json:"category_path"`
	}
	if err := json.Unmarshal(summary, &parsed); err != nil {
		return nil
	}
	var paths []string
	for _, entry := range parsed["broken"] {
		if len(paths) == limit {
			break
		}
		label := entry.CategoryPath
		if label == "" {
			label = "Unknown category"
		}
		paths = append(paths, label)
	}
	return paths
}

func buildCategoriesMetrics(snap, previous *types.CategorySnapshot, period snapshots.Period) ([]types.DomainMetric, []string) {
	if snap == nil {
		return nil, []string{"missing category snapshot for categories metrics"}
	}

	healthyCount := snap.HealthHealthyCount + snap.HealthStarCount
	healthyShare := 0.0
	if snap.TotalCategories > 0 {
		healthyShare = float64(healthyCount) / float64(snap.TotalCategories) * 100
	}

	headline := PageHeadlineData{
		Status:   categoriesHeadlineStatus(healthyShare),
		Message:  fmt.Sprintf("%.1f%% of categories are healthy or star", healthyShare),
		Subtitle: fmt.Sprintf("%s healthy out of %s", formatCount(int64(healthyCount)), formatCount(int64(snap.TotalCategories))),
	}

	var prevTotal, prevHealthy, prevConversions, prevCVR *float64
	if previous != nil {
		prevTotal = fptr(float64(previous.TotalCategories))
		prevHealthy = fptr(float64(previous.HealthHealthyCount + previous.HealthStarCount))
		prevConversions = fptr(previous.TotalConversions)
		prevCVR = previous.OverallCVR
	}

	cards := MetricCardData{Cards: []MetricCardItem{
		card("Total Categories", formatCount(int64(snap.TotalCategories)), float64(snap.TotalCategories), prevTotal),
		card("Healthy Categories", formatCount(int64(healthyCount)), float64(healthyCount), prevHealthy),
		card("Avg CVR", formatPercent(deref(snap.OverallCVR)), deref(snap.OverallCVR), prevCVR),
		card("Total Conversions", formatAmount(snap.TotalConversions), snap.TotalConversions, prevConversions),
	}}

	contextual := ContextualInfoData{
		Title: "Categories Needing Attention",
		Style: "warning",
		Items: []ContextualInfoItem{},
	}
	for _, path := range brokenOffenders(snap.HealthSummary, brokenCalloutLimit) {
		contextual.Items = append(contextual.Items, ContextualInfoItem{
			Label: path,
			Text:  "Broken category performance detected. Review product feed and coverage.",
		})
	}

	records, err := buildRecords(snap.RetailerID, PageCategories, snap.ID, period,
		component{types.ComponentPageHeadline, headline},
		component{types.ComponentMetricCard, cards},
		component{types.ComponentContextualInfo, contextual},
	)
	if err != nil {
		return nil, []string{err.Error()}
	}
	return records, nil
}
