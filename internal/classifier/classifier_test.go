package classifier

import (
	"encoding/json"
	"testing"

	"github.com/shareview/analytics/internal/warehouse"
)

func fptr(v float64) *float64 { return &v }

func TestKeywordTierCounts_NilCVRIsPoor(t *testing.T) {
	rows := []warehouse.KeywordTierRow{
		{SearchTerm: "no clicks", Impressions: 5000, CVR: nil},
		{SearchTerm: "zero cvr", Impressions: 5000, CVR: fptr(0)},
	}
	counts := keywordTierCounts(rows)
	if counts.Poor != 2 {
		t.Fatalf("expected 2 poor, got %+v", counts)
	}
}

func TestKeywordTierCounts_ModerateFoldsIntoUnderperforming(t *testing.T) {
	rows := []warehouse.KeywordTierRow{
		{SearchTerm: "star", Impressions: 2000, CVR: fptr(4.5)},
		{SearchTerm: "strong", Impressions: 2000, CVR: fptr(3.2)},
		{SearchTerm: "moderate", Impressions: 2000, CVR: fptr(2.5)},
		{SearchTerm: "under", Impressions: 2000, CVR: fptr(1.5)},
		{SearchTerm: "poor", Impressions: 2000, CVR: fptr(0.5)},
	}
	counts := keywordTierCounts(rows)
	if counts.Star != 1 || counts.Strong != 1 || counts.Underperforming != 2 || counts.Poor != 1 {
		t.Fatalf("unexpected counts %+v", counts)
	}
}

func TestKeywordTierCounts_LowImpressionsBlockStar(t *testing.T) {
	rows := []warehouse.KeywordTierRow{
		{SearchTerm: "thin", Impressions: 500, CVR: fptr(9.0)},
	}
	counts := keywordTierCounts(rows)
	if counts.Star != 0 || counts.Strong != 1 {
		t.Fatalf("expected demotion to strong, got %+v", counts)
	}
}

func TestCategoryHealth_CountsAndSummary(t *testing.T) {
	rows := []warehouse.CategoryPathRow{
		{CategoryPath: "Home", Impressions: 1000, Clicks: 100, Conversions: 5, CVR: fptr(5.0)},
		{CategoryPath: "Home>Kitchen", Impressions: 800, Clicks: 80, Conversions: 2, CVR: fptr(2.5)},
		{CategoryPath: "Garden", Impressions: 600, Clicks: 60, Conversions: 1, CVR: fptr(1.5)},
		{CategoryPath: "Toys", Impressions: 400, Clicks: 40, Conversions: 0, CVR: fptr(0)},
		{CategoryPath: "Books", Impressions: 200, Clicks: 0, Conversions: 0, CVR: nil},
	}

	counts, err := categoryHealth(rows)
	if err != nil {
		t.Fatalf("categoryHealth: %v", err)
	}
	if counts.Star != 1 || counts.Healthy != 1 || counts.Underperforming != 1 || counts.Broken != 1 || counts.Attention != 1 {
		t.Fatalf("unexpected counts %+v", counts)
	}

	var summary map[string][]healthSummaryEntry
	if err := json.Unmarshal(counts.HealthSummary, &summary); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if len(summary["star"]) != 1 || summary["star"][0].CategoryPath != "Home" {
		t.Fatalf("unexpected star offenders %+v", summary["star"])
	}
	if len(summary["attention"]) != 1 || summary["attention"][0].CVR != nil {
		t.Fatalf("attention entry should keep nil cvr, got %+v", summary["attention"])
	}
}

func TestCategoryHealth_CapsOffenderLists(t *testing.T) {
	rows := make([]warehouse.CategoryPathRow, 0, healthSummaryLimit+20)
	for i := 0; i < healthSummaryLimit+20; i++ {
		rows = append(rows, warehouse.CategoryPathRow{
			CategoryPath: "Cat",
			Impressions:  int64(i),
			Clicks:       10,
			CVR:          fptr(0),
		})
	}
	counts, err := categoryHealth(rows)
	if err != nil {
		t.Fatalf("categoryHealth: %v", err)
	}
	if counts.Broken != healthSummaryLimit+20 {
		t.Fatalf("expected all rows counted, got %d", counts.Broken)
	}

	var summary map[string][]healthSummaryEntry
	if err := json.Unmarshal(counts.HealthSummary, &summary); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	broken := summary["broken"]
	if len(broken) != healthSummaryLimit {
		t.Fatalf("expected capped list of %d, got %d", healthSummaryLimit, len(broken))
	}
	if broken[0].Impressions != int64(healthSummaryLimit+19) {
		t.Fatalf("expected highest-impression offender first, got %d", broken[0].Impressions)
	}
}

func TestTopShare_SmallCatalogAlwaysIncludesOne(t *testing.T) {
	rows := []warehouse.ProductRow{
		{ItemID: "a", Conversions: 8},
		{ItemID: "b", Conversions: 2},
	}
	count, share := topShare(rows, 10, 0.01)
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}
	if share != 80.0 {
		t.Fatalf("expected share 80.00, got %v", share)
	}
}

func TestTopShare_ConcentrationScenario(t *testing.T) {
	rows := make([]warehouse.ProductRow, 0, 100)
	for i := 0; i < 100; i++ {
		var conv float64
		if i < 5 {
			conv = 60.0 // top five carry 300 of 1000 conversions
		} else {
			conv = 700.0 / 95.0
		}
		rows = append(rows, warehouse.ProductRow{ItemID: "p", Conversions: conv})
	}
	count, share := topShare(rows, 1000, 0.05)
	if count != 5 {
		t.Fatalf("expected count 5, got %d", count)
	}
	if share != 30.0 {
		t.Fatalf("expected share 30.00, got %v", share)
	}
}

func TestTopShare_MonotonicAcrossPercents(t *testing.T) {
	rows := make([]warehouse.ProductRow, 0, 200)
	var total float64
	for i := 0; i < 200; i++ {
		conv := float64(200 - i)
		total += conv
		rows = append(rows, warehouse.ProductRow{ItemID: "p", Conversions: conv})
	}
	c1, s1 := topShare(rows, total, 0.01)
	c5, s5 := topShare(rows, total, 0.05)
	c10, s10 := topShare(rows, total, 0.10)
	if c1 > c5 || c5 > c10 {
		t.Fatalf("counts not monotonic: %d %d %d", c1, c5, c10)
	}
	if s1 > s5 || s5 > s10 {
		t.Fatalf("shares not monotonic: %v %v %v", s1, s5, s10)
	}
}

func TestTopShare_ZeroConversionsZeroShare(t *testing.T) {
	rows := []warehouse.ProductRow{{ItemID: "a"}, {ItemID: "b"}}
	count, share := topShare(rows, 0, 0.10)
	if count != 1 || share != 0 {
		t.Fatalf("expected count 1 share 0, got %d %v", count, share)
	}
}

func TestProductClassificationCounts_WastedClicks(t *testing.T) {
	rows := []warehouse.ProductRow{
		{ItemID: "wasted", Impressions: 2000, Clicks: 300, Conversions: 1, CTR: 15.0, CVR: 0.33},
		{ItemID: "fine", Impressions: 2000, Clicks: 100, Conversions: 5, CTR: 5.0, CVR: 5.0},
		{ItemID: "edge", Impressions: 2000, Clicks: 100, Conversions: 1, CTR: 6.0, CVR: 1.0},
	}
	counts := productClassificationCounts(rows)
	if counts.ProductsWithWastedClicks != 1 {
		t.Fatalf("expected 1 wasted-click product, got %d", counts.ProductsWithWastedClicks)
	}
	if counts.TotalWastedClicks != 300 {
		t.Fatalf("expected 300 wasted clicks, got %d", counts.TotalWastedClicks)
	}
	if counts.WastedClicksPercentage != 60.0 {
		t.Fatalf("expected 60.00 pct, got %v", counts.WastedClicksPercentage)
	}
}

func TestProductClassificationCounts_TierMapping(t *testing.T) {
	rows := []warehouse.ProductRow{
		{ItemID: "star", Impressions: 2000, Clicks: 100, Conversions: 5, CVR: 5.0},
		{ItemID: "good", Impressions: 2000, Clicks: 100, Conversions: 3, CVR: 3.0},
		{ItemID: "mid", Impressions: 2000, Clicks: 100, Conversions: 2, CVR: 2.0},
		{ItemID: "under", Impressions: 2000, Clicks: 100, Conversions: 1, CVR: 1.0},
	}
	counts := productClassificationCounts(rows)
	if counts.Star != 1 || counts.Good != 2 || counts.Underperformer != 1 {
		t.Fatalf("unexpected tiers %+v", counts)
	}
}
