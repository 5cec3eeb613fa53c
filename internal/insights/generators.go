// Package insights produces narrative insight payloads from classified
// snapshots. Generation is template-driven and deterministic; the model
// metadata marks the rows as placeholder output until a real model is wired
// in. Every generated insight lands as pending and inactive so a human
// reviews it before publication.
package insights

import (
	"fmt"
	"math"
)

// Style directives shape how verbose the generated bullets are.
const (
	StyleStandard    = "standard"
	StyleConcise     = "concise"
	StyleExecSummary = "exec-summary"
	StyleDetailed    = "detailed"
)

const execPrefix = "Executive summary: "

// InsightsPanelData feeds the three-column action panel on the overview page.
type InsightsPanelData struct {
	BeatRivals           []string `json:"beatRivals"`
	OptimiseSpend        []string `json:"optimiseSpend"`
	ExploreOpportunities []string `json:"exploreOpportunities"`
}

type MarketAnalysisData struct {
	Headline   string   `json:"headline"`
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
	Risks      []string `json:"risks"`
}

type RecommendationData struct {
	QuickWins      []string `json:"quickWins"`
	StrategicMoves []string `json:"strategicMoves"`
	WatchList      []string `json:"watchList"`
}

// PanelInput carries the keyword tier shape the insight panel narrates.
type PanelInput struct {
	TotalKeywords            int
	OverallCTR               float64
	OverallCVR               float64
	TierStarCount            int
	TierStrongCount          int
	TierUnderperformingCount int
	TierPoorCount            int
	Style                    string
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func GenerateInsightsPanel(in PanelInput) InsightsPanelData {
	highPerformers := in.TierStarCount + in.TierStrongCount
	highShare := 0.0
	underShare := 0.0
	if in.TotalKeywords > 0 {
		highShare = float64(highPerformers) / float64(in.TotalKeywords) * 100
		underShare = float64(in.TierUnderperformingCount+in.TierPoorCount) / float64(in.TotalKeywords) * 100
	}

	beatRivals := []string{
		fmt.Sprintf("Star and strong keywords now represent %s%% of the portfolio.", pct(highShare)),
		fmt.Sprintf("Overall conversion rate is holding at %s%%.", pct(in.OverallCVR)),
	}
	if highShare >= 15 {
		beatRivals = append(beatRivals, "Maintain momentum by protecting bids on the top-performing terms.")
	} else {
		beatRivals = append(beatRivals, "Prioritise budget for top-performing terms to lift win rates.")
	}

	optimiseSpend := []string{
		fmt.Sprintf("Underperforming keywords account for %s%% of coverage.", pct(underShare)),
		fmt.Sprintf("Overall CTR is %s%%, signalling room to refine targeting.", pct(in.OverallCTR)),
	}
	if underShare >= 50 {
		optimiseSpend = append(optimiseSpend, "Trim low-quality queries and reallocate spend to proven themes.")
	} else {
		optimiseSpend = append(optimiseSpend, "Tighten match types on low-converting queries to protect efficiency.")
	}

	exploreOpportunities := []string{
		fmt.Sprintf("You have %d high-performing keywords to scale confidently.", highPerformers),
		fmt.Sprintf("With %d star terms, expand coverage into adjacent categories.", in.TierStarCount),
	}
	if in.TierStarCount >= 10 {
		exploreOpportunities = append(exploreOpportunities, "Test incremental budget on star terms to capture missed demand.")
	} else {
		exploreOpportunities = append(exploreOpportunities, "Surface new star candidates by broadening discovery campaigns.")
	}

	switch in.Style {
	case StyleConcise:
		beatRivals = beatRivals[:1]
		optimiseSpend = optimiseSpend[:1]
		exploreOpportunities = exploreOpportunities[:1]
	case StyleExecSummary:
		beatRivals = []string{execPrefix + beatRivals[0], beatRivals[1]}
		optimiseSpend = []string{execPrefix + optimiseSpend[0], optimiseSpend[1]}
		exploreOpportunities = []string{execPrefix + exploreOpportunities[0], exploreOpportunities[1]}
	}
	// Standard and detailed both carry all three bullets per column.

	return InsightsPanelData{
		BeatRivals:           beatRivals,
		OptimiseSpend:        optimiseSpend,
		ExploreOpportunities: exploreOpportunities,
	}
}

// MarketInput carries the category health shape the market analysis narrates.
type MarketInput struct {
	TotalCategories int
	OverallCTR      float64
	OverallCVR      float64
	HealthyCount    int
	StarCount       int
	Style           string
}

func GenerateMarketAnalysis(in MarketInput) MarketAnalysisData {
	healthyShare := 0.0
	if in.TotalCategories > 0 {
		healthyShare = float64(in.HealthyCount+in.StarCount) / float64(in.TotalCategories) * 100
	}

	headline := fmt.Sprintf("Market resilience is steady with %s%% healthy or star categories.", pct(healthyShare))
	summary := fmt.Sprintf("CTR is %s%% and CVR is %s%%, reflecting stable demand.", pct(in.OverallCTR), pct(in.OverallCVR))

	highlights := []string{
		fmt.Sprintf("Healthy and star categories total %d out of %d.", in.HealthyCount+in.StarCount, in.TotalCategories),
		fmt.Sprintf("Click efficiency remains steady at %s%% CTR.", pct(in.OverallCTR)),
		fmt.Sprintf("Conversion strength sits at %s%% CVR across categories.", pct(in.OverallCVR)),
	}

	var risks []string
	if healthyShare < 20 {
		risks = append(risks, "Category health is concentrated; diversify high-performing segments.")
	} else {
		risks = append(risks, "Monitor lower-performing categories to prevent drift.")
	}

	switch in.Style {
	case StyleConcise:
		highlights = highlights[:1]
	case StyleExecSummary:
		headline = execPrefix + headline
		highlights = highlights[:2]
	}

	return MarketAnalysisData{
		Headline:   headline,
		Summary:    summary,
		Highlights: highlights,
		Risks:      risks,
	}
}

// RecommendationInput carries the product classification shape the
// recommendations narrate.
type RecommendationInput struct {
	TotalProducts          int
	StarCount              int
	GoodCount              int
	UnderperformerCount    int
	WastedClicksPercentage float64
	Top1Share              float64
	Style                  string
}

func GenerateRecommendations(in RecommendationInput) RecommendationData {
	strongPerformers := in.StarCount + in.GoodCount
	strongShare := 0.0
	if in.TotalProducts > 0 {
		strongShare = float64(strongPerformers) / float64(in.TotalProducts) * 100
	}

	quickWins := []string{
		fmt.Sprintf("Protect spend on the %d star and good products driving %s%% of range.", strongPerformers, pct(strongShare)),
		fmt.Sprintf("Reduce wasted clicks (%s%%) by tightening product exclusions.", pct(in.WastedClicksPercentage)),
	}
	strategicMoves := []string{
		fmt.Sprintf("Shift budget towards the top 1%% of products capturing %s%% of conversions.", pct(in.Top1Share)),
		fmt.Sprintf("Refine merchandising for %d underperforming products to lift CVR.", in.UnderperformerCount),
	}
	watchList := []string{
		"Monitor stock availability on star products to avoid conversion leakage.",
		"Review price competitiveness on high-traffic, low-converting items.",
	}

	switch in.Style {
	case StyleConcise:
		quickWins = quickWins[:1]
		strategicMoves = strategicMoves[:1]
		watchList = watchList[:1]
	case StyleExecSummary:
		quickWins = []string{execPrefix + quickWins[0], quickWins[1]}
		strategicMoves = []string{execPrefix + strategicMoves[0], strategicMoves[1]}
		watchList = []string{execPrefix + watchList[0], watchList[1]}
	case StyleDetailed:
		quickWins = append(quickWins, fmt.Sprintf("%d star products represent the highest-priority scaling opportunity.", in.StarCount))
		strategicMoves = append(strategicMoves, fmt.Sprintf("Focus on the %d good-performing products to drive incremental growth.", in.GoodCount))
		watchList = append(watchList, fmt.Sprintf("Track conversion rates on the top %d products (top 1%%) for optimization signals.", int(math.Ceil(float64(in.TotalProducts)*0.01))))
	}

	return RecommendationData{
		QuickWins:      quickWins,
		StrategicMoves: strategicMoves,
		WatchList:      watchList,
	}
}
