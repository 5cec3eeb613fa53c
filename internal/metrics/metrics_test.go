package metrics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/types"
)

func TestPercentChange_NilWhenNoBaseline(t *testing.T) {
	if got := percentChange(100, nil); got != nil {
		t.Fatalf("expected nil for missing previous, got %v", *got)
	}
	zero := 0.0
	if got := percentChange(100, &zero); got != nil {
		t.Fatalf("expected nil for zero previous, got %v", *got)
	}
}

func TestPercentChange_Computed(t *testing.T) {
	prev := 200.0
	got := percentChange(250, &prev)
	if got == nil || *got != 25.0 {
		t.Fatalf("expected 25.0, got %v", got)
	}
	got = percentChange(150, &prev)
	if got == nil || *got != -25.0 {
		t.Fatalf("expected -25.0, got %v", got)
	}
}

func TestStatusFromChange(t *testing.T) {
	cases := []struct {
		change *float64
		want   ComponentStatus
	}{
		{nil, StatusWarning},
		{fptr(5.0), StatusSuccess},
		{fptr(12.0), StatusSuccess},
		{fptr(0.0), StatusWarning},
		{fptr(4.9), StatusWarning},
		{fptr(-0.1), StatusCritical},
	}
	for _, c := range cases {
		if got := statusFromChange(c.change); got != c.want {
			t.Fatalf("statusFromChange(%v) = %s, want %s", c.change, got, c.want)
		}
	}
}

func TestFormatCount_GroupsThousands(t *testing.T) {
	cases := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
		-42000:  "-42,000",
	}
	for in, want := range cases {
		if got := formatCount(in); got != want {
			t.Fatalf("formatCount(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatAmount_TrimsFraction(t *testing.T) {
	if got := formatAmount(12345.5); got != "12,345.5" {
		t.Fatalf("got %q", got)
	}
	if got := formatAmount(12345); got != "12,345" {
		t.Fatalf("got %q", got)
	}
}

func testPeriod(t *testing.T) snapshots.Period {
	t.Helper()
	return snapshots.MonthRange(2026, 7)
}

func TestKeywordsHeadline_HighShareThresholds(t *testing.T) {
	cases := []struct {
		share float64
		want  ComponentStatus
	}{
		{61.0, StatusSuccess},
		{60.0, StatusWarning},
		{40.0, StatusWarning},
		{39.9, StatusCritical},
	}
	for _, c := range cases {
		if got := keywordsHeadlineStatus(c.share); got != c.want {
			t.Fatalf("keywordsHeadlineStatus(%v) = %s, want %s", c.share, got, c.want)
		}
	}
}

func TestBuildKeywordsMetrics_ShareAndComponents(t *testing.T) {
	snap := &types.KeywordsSnapshot{
		RetailerID:      "bobs-bikes",
		TotalKeywords:   100,
		TierStarCount:   20,
		TierStrongCount: 10,
	}

	records, errs := buildKeywordsMetrics(snap, nil, testPeriod(t))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 3 {
		t.Fatalf("expected headline, cards and quick stats, got %d records", len(records))
	}

	var headline PageHeadlineData
	if err := json.Unmarshal(records[0].ComponentData, &headline); err != nil {
		t.Fatalf("unmarshal headline: %v", err)
	}
	if headline.Status != StatusCritical {
		t.Fatalf("30%% high share should be critical, got %s", headline.Status)
	}
	if headline.Message != "30.0% of keywords are star or strong" {
		t.Fatalf("unexpected message %q", headline.Message)
	}

	var cards MetricCardData
	if err := json.Unmarshal(records[1].ComponentData, &cards); err != nil {
		t.Fatalf("unmarshal cards: %v", err)
	}
	if len(cards.Cards) != 4 {
		t.Fatalf("expected 4 cards, got %d", len(cards.Cards))
	}
	if cards.Cards[0].Change != nil {
		t.Fatalf("no previous snapshot should give nil change")
	}
	if cards.Cards[0].Status != StatusWarning {
		t.Fatalf("nil change should read as warning, got %s", cards.Cards[0].Status)
	}
}

func TestBuildKeywordsMetrics_MissingSnapshot(t *testing.T) {
	records, errs := buildKeywordsMetrics(nil, nil, testPeriod(t))
	if len(records) != 0 || len(errs) != 1 {
		t.Fatalf("expected no records and one error, got %d/%d", len(records), len(errs))
	}
}

func TestBuildOverviewMetrics_GrowthDirection(t *testing.T) {
	cvr := 6.0
	snap := &types.KeywordsSnapshot{
		RetailerID:       "bobs-bikes",
		TotalKeywords:    50,
		TotalConversions: 120,
		OverallCVR:       &cvr,
	}
	previous := &types.KeywordsSnapshot{TotalConversions: 100}

	records, errs := buildOverviewMetrics(snap, previous, testPeriod(t))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	var headline PageHeadlineData
	if err := json.Unmarshal(records[0].ComponentData, &headline); err != nil {
		t.Fatalf("unmarshal headline: %v", err)
	}
	if headline.Status != StatusSuccess {
		t.Fatalf("20%% growth with 6%% cvr should be success, got %s", headline.Status)
	}
	if headline.Message != "GMV up 20.0% in July 2026" {
		t.Fatalf("unexpected message %q", headline.Message)
	}
}

func TestBuildCategoriesMetrics_BrokenCallout(t *testing.T) {
	summary := map[string][]map[string]interface{}{
		"broken": {
			{"category_path": "Garden > Sheds"},
			{"category_path": "Garden > Fencing"},
			{"category_path": "Toys"},
			{"category_path": "Books"},
		},
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal summary: %v", err)
	}

	snap := &types.CategorySnapshot{
		RetailerID:         "bobs-bikes",
		TotalCategories:    10,
		HealthHealthyCount: 6,
		HealthStarCount:    2,
		HealthSummary:      raw,
	}

	records, errs := buildCategoriesMetrics(snap, nil, testPeriod(t))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	var headline PageHeadlineData
	if err := json.Unmarshal(records[0].ComponentData, &headline); err != nil {
		t.Fatalf("unmarshal headline: %v", err)
	}
	if headline.Status != StatusSuccess {
		t.Fatalf("80%% healthy should be success, got %s", headline.Status)
	}

	var contextual ContextualInfoData
	if err := json.Unmarshal(records[2].ComponentData, &contextual); err != nil {
		t.Fatalf("unmarshal contextual: %v", err)
	}
	if len(contextual.Items) != brokenCalloutLimit {
		t.Fatalf("expected %d callout items, got %d", brokenCalloutLimit, len(contextual.Items))
	}
	if contextual.Items[0].Label != "Garden > Sheds" {
		t.Fatalf("unexpected first offender %q", contextual.Items[0].Label)
	}
}

func TestBuildProductsMetrics_WastedClicksCallout(t *testing.T) {
	snap := &types.ProductSnapshot{
		RetailerID:               "bobs-bikes",
		TotalProducts:            100,
		StarCount:                10,
		GoodCount:                25,
		WastedClicksPercentage:   12.5,
		ProductsWithWastedClicks: 8,
		TotalWastedClicks:        4200,
	}

	records, errs := buildProductsMetrics(snap, nil, testPeriod(t))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 4 {
		t.Fatalf("wasted clicks above threshold should add contextual info, got %d records", len(records))
	}

	snap.WastedClicksPercentage = 10.0
	records, _ = buildProductsMetrics(snap, nil, testPeriod(t))
	if len(records) != 3 {
		t.Fatalf("at threshold there should be no callout, got %d records", len(records))
	}
}

func TestBuildAuctionsMetrics_HeadlineThresholds(t *testing.T) {
	cases := []struct {
		imprShare float64
		overlap   float64
		want      ComponentStatus
	}{
		{55, 65, StatusSuccess},
		{55, 60, StatusWarning},
		{31, 10, StatusWarning},
		{10, 41, StatusWarning},
		{10, 10, StatusCritical},
	}
	for _, c := range cases {
		if got := auctionsHeadlineStatus(c.imprShare, c.overlap); got != c.want {
			t.Fatalf("auctionsHeadlineStatus(%v, %v) = %s, want %s", c.imprShare, c.overlap, got, c.want)
		}
	}
}

func TestBuildCoverageMetrics_Components(t *testing.T) {
	top, _ := json.Marshal(map[string]interface{}{"category": "Bikes", "impressions": 120000})
	gap, _ := json.Marshal(map[string]interface{}{"category": "Spares", "impressions": 12})
	snap := &types.CoverageSnapshot{
		RetailerID:             "bobs-bikes",
		TotalProducts:          1000,
		ActiveProducts:         850,
		ZeroVisibilityProducts: 150,
		CoveragePct:            85.0,
		TopCategory:            top,
		BiggestGap:             gap,
	}

	records, errs := buildCoverageMetrics(snap, testPeriod(t))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	var headline PageHeadlineData
	if err := json.Unmarshal(records[0].ComponentData, &headline); err != nil {
		t.Fatalf("unmarshal headline: %v", err)
	}
	if headline.Status != StatusSuccess {
		t.Fatalf("85%% coverage should be success, got %s", headline.Status)
	}

	var contextual ContextualInfoData
	if err := json.Unmarshal(records[2].ComponentData, &contextual); err != nil {
		t.Fatalf("unmarshal contextual: %v", err)
	}
	if contextual.Items[0].Text != "Bikes (120,000 impressions)" {
		t.Fatalf("unexpected top category text %q", contextual.Items[0].Text)
	}
}

func TestBuildRecords_KeyFields(t *testing.T) {
	period := snapshots.MonthRange(2026, 7)
	snap := &types.KeywordsSnapshot{RetailerID: "bobs-bikes", TotalKeywords: 1}

	records, errs := buildKeywordsMetrics(snap, nil, period)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	for _, rec := range records {
		if rec.RetailerID != "bobs-bikes" || rec.PageType != PageKeywords || rec.TabName != PageKeywords {
			t.Fatalf("unexpected key fields %+v", rec)
		}
		if !rec.PeriodStart.Equal(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected period start %v", rec.PeriodStart)
		}
		if rec.CalculationMethod != "algorithmic" || !rec.IsActive {
			t.Fatalf("unexpected defaults %+v", rec)
		}
	}
}
