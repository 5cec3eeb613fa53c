package metrics

import (
	"encoding/json"
	"fmt"

	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/types"
)

func coverageHeadlineStatus(coveragePct float64) ComponentStatus {
	if coveragePct > 80 {
		return StatusSuccess
	}
	if coveragePct >= 60 {
		return StatusWarning
	}
	return StatusCritical
}

func coverageCategoryName(raw []byte) (name string, impressions int64) {
	name = "Unknown"
	if len(raw) == 0 {
		return name, 0
	}
	var parsed struct {
		Category    string `json:"category"`
		Impressions int64  `json:"impressions"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Category == "" {
		return name, 0
	}
	return parsed.Category, parsed.Impressions
}

func buildCoverageMetrics(snap *types.CoverageSnapshot, period snapshots.Period) ([]types.DomainMetric, []string) {
	if snap == nil {
		return nil, []string{"missing coverage snapshot for coverage metrics"}
	}

	headline := PageHeadlineData{
		Status:   coverageHeadlineStatus(snap.CoveragePct),
		Message:  fmt.Sprintf("%s of products have visibility", formatPercent(snap.CoveragePct)),
		Subtitle: fmt.Sprintf("%s active products", formatCount(int64(snap.ActiveProducts))),
	}

	quickStats := QuickStatsData{Items: []QuickStatsItem{
		{Label: "Total Products", Value: formatCount(int64(snap.TotalProducts)), Color: "#0ea5e9"},
		{Label: "Active Products", Value: formatCount(int64(snap.ActiveProducts)), Color: "#10b981"},
		{Label: "Zero Visibility", Value: formatCount(int64(snap.ZeroVisibilityProducts)), Color: "#ef4444"},
		{Label: "Coverage", Value: formatPercent(snap.CoveragePct), Color: "#10b981"},
	}}

	topName, topImpressions := coverageCategoryName(snap.TopCategory)
	gapName, gapImpressions := coverageCategoryName(snap.BiggestGap)

	contextual := ContextualInfoData{
		Title: "Coverage Opportunities",
		Style: "warning",
		Items: []ContextualInfoItem{
			{Label: "Top category", Text: fmt.Sprintf("%s (%s impressions)", topName, formatCount(topImpressions))},
			{Label: "Biggest gap", Text: fmt.Sprintf("%s (%s impressions)", gapName, formatCount(gapImpressions))},
		},
	}

	records, err := buildRecords(snap.RetailerID, PageCoverage, snap.ID, period,
		component{types.ComponentPageHeadline, headline},
		component{types.ComponentQuickStats, quickStats},
		component{types.ComponentContextualInfo, contextual},
	)
	if err != nil {
		return nil, []string{err.Error()}
	}
	return records, nil
}
