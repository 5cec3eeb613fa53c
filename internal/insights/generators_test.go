package insights

import (
	"reflect"
	"strings"
	"testing"
)

func panelInput() PanelInput {
	return PanelInput{
		TotalKeywords:            100,
		OverallCTR:               2.4,
		OverallCVR:               3.1,
		TierStarCount:            12,
		TierStrongCount:          8,
		TierUnderperformingCount: 30,
		TierPoorCount:            50,
	}
}

func TestGenerateInsightsPanel_Deterministic(t *testing.T) {
	first := GenerateInsightsPanel(panelInput())
	second := GenerateInsightsPanel(panelInput())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same input should produce identical output")
	}
}

func TestGenerateInsightsPanel_SharesAndBranches(t *testing.T) {
	data := GenerateInsightsPanel(panelInput())

	if len(data.BeatRivals) != 3 || len(data.OptimiseSpend) != 3 || len(data.ExploreOpportunities) != 3 {
		t.Fatalf("standard style should carry three bullets per column: %+v", data)
	}
	if !strings.Contains(data.BeatRivals[0], "20.0%") {
		t.Fatalf("high share should be 20.0%%, got %q", data.BeatRivals[0])
	}
	if !strings.Contains(data.OptimiseSpend[0], "80.0%") {
		t.Fatalf("under share should be 80.0%%, got %q", data.OptimiseSpend[0])
	}
	// 20% high share keeps the momentum branch, 80% under share trims spend.
	if !strings.Contains(data.BeatRivals[2], "Maintain momentum") {
		t.Fatalf("unexpected beatRivals branch %q", data.BeatRivals[2])
	}
	if !strings.Contains(data.OptimiseSpend[2], "Trim low-quality") {
		t.Fatalf("unexpected optimiseSpend branch %q", data.OptimiseSpend[2])
	}
	if !strings.Contains(data.ExploreOpportunities[2], "Test incremental budget") {
		t.Fatalf("12 star terms should take the scaling branch, got %q", data.ExploreOpportunities[2])
	}
}

func TestGenerateInsightsPanel_ZeroKeywords(t *testing.T) {
	data := GenerateInsightsPanel(PanelInput{})
	if !strings.Contains(data.BeatRivals[0], "0.0%") {
		t.Fatalf("zero keywords should read as 0.0%% share, got %q", data.BeatRivals[0])
	}
}

func TestGenerateInsightsPanel_Styles(t *testing.T) {
	in := panelInput()

	in.Style = StyleConcise
	concise := GenerateInsightsPanel(in)
	if len(concise.BeatRivals) != 1 || len(concise.OptimiseSpend) != 1 || len(concise.ExploreOpportunities) != 1 {
		t.Fatalf("concise style should keep one bullet per column: %+v", concise)
	}

	in.Style = StyleExecSummary
	exec := GenerateInsightsPanel(in)
	if len(exec.BeatRivals) != 2 || !strings.HasPrefix(exec.BeatRivals[0], "Executive summary: ") {
		t.Fatalf("exec-summary should prefix the lead bullet: %+v", exec.BeatRivals)
	}
}

func TestGenerateMarketAnalysis_RiskBranches(t *testing.T) {
	healthy := GenerateMarketAnalysis(MarketInput{
		TotalCategories: 100,
		HealthyCount:    40,
		StarCount:       10,
	})
	if !strings.Contains(healthy.Headline, "50.0%") {
		t.Fatalf("unexpected headline %q", healthy.Headline)
	}
	if !strings.Contains(healthy.Risks[0], "Monitor lower-performing") {
		t.Fatalf("healthy share above 20%% should monitor, got %q", healthy.Risks[0])
	}

	concentrated := GenerateMarketAnalysis(MarketInput{
		TotalCategories: 100,
		HealthyCount:    10,
		StarCount:       5,
	})
	if !strings.Contains(concentrated.Risks[0], "diversify") {
		t.Fatalf("low healthy share should flag concentration, got %q", concentrated.Risks[0])
	}
}

func TestGenerateMarketAnalysis_ExecSummaryTrimsHighlights(t *testing.T) {
	data := GenerateMarketAnalysis(MarketInput{TotalCategories: 10, HealthyCount: 5, Style: StyleExecSummary})
	if len(data.Highlights) != 2 {
		t.Fatalf("exec-summary should keep two highlights, got %d", len(data.Highlights))
	}
	if !strings.HasPrefix(data.Headline, "Executive summary: ") {
		t.Fatalf("unexpected headline %q", data.Headline)
	}
}

func TestGenerateRecommendations_DetailedAddsBullets(t *testing.T) {
	in := RecommendationInput{
		TotalProducts:          950,
		StarCount:              30,
		GoodCount:              70,
		UnderperformerCount:    850,
		WastedClicksPercentage: 14.2,
		Top1Share:              38.5,
	}

	standard := GenerateRecommendations(in)
	if len(standard.QuickWins) != 2 || len(standard.WatchList) != 2 {
		t.Fatalf("standard style should keep two bullets: %+v", standard)
	}

	in.Style = StyleDetailed
	detailed := GenerateRecommendations(in)
	if len(detailed.QuickWins) != 3 || len(detailed.StrategicMoves) != 3 || len(detailed.WatchList) != 3 {
		t.Fatalf("detailed style should add a third bullet: %+v", detailed)
	}
	// ceil(950 * 0.01) = 10
	if !strings.Contains(detailed.WatchList[2], "top 10 products") {
		t.Fatalf("unexpected detailed watch bullet %q", detailed.WatchList[2])
	}
}

func TestGenerateRecommendations_Shares(t *testing.T) {
	data := GenerateRecommendations(RecommendationInput{
		TotalProducts: 200,
		StarCount:     10,
		GoodCount:     40,
	})
	if !strings.Contains(data.QuickWins[0], "50 star and good products") {
		t.Fatalf("unexpected quick win %q", data.QuickWins[0])
	}
	if !strings.Contains(data.QuickWins[0], "25.0%") {
		t.Fatalf("strong share should be 25.0%%, got %q", data.QuickWins[0])
	}
}
