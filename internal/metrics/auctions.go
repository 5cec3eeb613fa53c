package metrics

import (
	"fmt"

	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/types"
)

func auctionsHeadlineStatus(impressionShare, overlapRate float64) ComponentStatus {
	if impressionShare > 50 && overlapRate > 60 {
		return StatusSuccess
	}
	if impressionShare > 30 || overlapRate > 40 {
		return StatusWarning
	}
	return StatusCritical
}

func competitorLine(id *string, qualifier string, rate *float64) string {
	name := "Unknown"
	if id != nil && *id != "" {
		name = *id
	}
	return fmt.Sprintf("%s (%s %s)", name, qualifier, formatPercent(deref(rate)))
}

func buildAuctionsMetrics(snap *types.AuctionSnapshot, period snapshots.Period) ([]types.DomainMetric, []string) {
	if snap == nil {
		return nil, []string{"missing auction snapshot for auctions metrics"}
	}

	impressionShare := deref(snap.AvgImpressionShare)

	headline := PageHeadlineData{
		Status:   auctionsHeadlineStatus(impressionShare, snap.AvgOverlapRate),
		Message:  fmt.Sprintf("Average impression share is %s", formatPercent(impressionShare)),
		Subtitle: fmt.Sprintf("Overlap rate: %s", formatPercent(snap.AvgOverlapRate)),
	}

	quickStats := QuickStatsData{Items: []QuickStatsItem{
		{Label: "Avg Impression Share", Value: formatPercent(impressionShare), Color: "#10b981"},
		{Label: "Total Competitors", Value: formatCount(int64(snap.TotalCompetitors)), Color: "#0ea5e9"},
		{Label: "Avg Overlap Rate", Value: formatPercent(snap.AvgOverlapRate), Color: "#f59e0b"},
		{Label: "Avg Outranking Share", Value: formatPercent(snap.AvgOutrankingShare), Color: "#8b5cf6"},
	}}

	contextual := ContextualInfoData{
		Title: "Competitive Landscape",
		Style: "info",
		Items: []ContextualInfoItem{
			{Label: "Top competitor", Text: competitorLine(snap.TopCompetitorID, "Overlap", snap.TopCompetitorOverlapRate)},
			{Label: "Biggest threat", Text: competitorLine(snap.BiggestThreatID, "Outranking", snap.BiggestThreatOutrankingYou)},
			{Label: "Best opportunity", Text: competitorLine(snap.BestOpportunityID, "You outrank", snap.BestOpportunityYouOutranking)},
		},
	}

	records, err := buildRecords(snap.RetailerID, PageAuctions, snap.ID, period,
		component{types.ComponentPageHeadline, headline},
		component{types.ComponentQuickStats, quickStats},
		component{types.ComponentContextualInfo, contextual},
	)
	if err != nil {
		return nil, []string{err.Error()}
	}
	return records, nil
}
