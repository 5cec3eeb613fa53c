package reports

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/shareview/analytics/internal/types"
)

func retailerWithTabs(t *testing.T, tabs []string) *types.RetailerMetadata {
	t.Helper()
	raw, err := json.Marshal(tabs)
	if err != nil {
		t.Fatalf("marshal tabs: %v", err)
	}
	return &types.RetailerMetadata{RetailerID: "bobs-bikes", VisibleTabs: raw}
}

func TestCaptureVisibility_IntersectsLiveAndSelected(t *testing.T) {
	retailer := retailerWithTabs(t, []string{"overview", "keywords"})

	cfg := captureVisibility(retailer, []string{"keywords", "products"})
	if !reflect.DeepEqual(cfg.VisibleTabs, []string{"keywords"}) {
		t.Fatalf("expected [keywords], got %v", cfg.VisibleTabs)
	}
}

func TestCaptureVisibility_NoSelectionKeepsLiveTabs(t *testing.T) {
	retailer := retailerWithTabs(t, []string{"overview", "auctions"})

	cfg := captureVisibility(retailer, nil)
	if !reflect.DeepEqual(cfg.VisibleTabs, []string{"overview", "auctions"}) {
		t.Fatalf("expected live tabs, got %v", cfg.VisibleTabs)
	}
}

func TestCaptureVisibility_MissingRetailerFallsBack(t *testing.T) {
	cfg := captureVisibility(nil, nil)
	if !reflect.DeepEqual(cfg.VisibleTabs, DefaultTabs) {
		t.Fatalf("expected default tabs, got %v", cfg.VisibleTabs)
	}
	if !reflect.DeepEqual(cfg.VisibleMetrics, DefaultMetrics) {
		t.Fatalf("expected default metrics, got %v", cfg.VisibleMetrics)
	}

	cfg = captureVisibility(nil, []string{"keywords"})
	if !reflect.DeepEqual(cfg.VisibleTabs, []string{"keywords"}) {
		t.Fatalf("missing retailer should keep selected domains, got %v", cfg.VisibleTabs)
	}
}

func TestCaptureVisibility_LiveConfigCarriesOver(t *testing.T) {
	metrics, _ := json.Marshal([]string{"gmv", "cvr"})
	filters, _ := json.Marshal([]string{"brand-terms"})
	features, _ := json.Marshal(map[string]bool{"insights": true})
	tabs, _ := json.Marshal([]string{"overview", "keywords", "products"})

	cfg := captureVisibility(&types.RetailerMetadata{
		RetailerID:      "bobs-bikes",
		VisibleTabs:     tabs,
		VisibleMetrics:  metrics,
		KeywordFilters:  filters,
		FeaturesEnabled: features,
	}, []string{"overview", "products"})

	if !reflect.DeepEqual(cfg.VisibleTabs, []string{"overview", "products"}) {
		t.Fatalf("unexpected tabs %v", cfg.VisibleTabs)
	}
	if !reflect.DeepEqual(cfg.VisibleMetrics, []string{"gmv", "cvr"}) {
		t.Fatalf("unexpected metrics %v", cfg.VisibleMetrics)
	}
	if !reflect.DeepEqual(cfg.KeywordFilters, []string{"brand-terms"}) {
		t.Fatalf("unexpected filters %v", cfg.KeywordFilters)
	}
	if !cfg.FeaturesEnabled["insights"] {
		t.Fatalf("unexpected features %v", cfg.FeaturesEnabled)
	}
}

func TestInsightTypeForDomain(t *testing.T) {
	cases := map[string]string{
		"overview":   types.InsightTypePanel,
		"keywords":   types.InsightTypePanel,
		"categories": types.InsightTypeMarketAnalysis,
		"products":   types.InsightTypeRecommendation,
		"auctions":   "",
		"coverage":   "",
	}
	for domain, want := range cases {
		if got := insightTypeForDomain(domain); got != want {
			t.Fatalf("insightTypeForDomain(%s) = %q, want %q", domain, got, want)
		}
	}
}
