package snapshots

import (
	"testing"

	"github.com/shareview/analytics/internal/warehouse"
)

func prodRow(id string, impressions, clicks int64, conversions float64) warehouse.ProductRow {
	r := warehouse.ProductRow{
		ItemID:       id,
		ProductTitle: "title " + id,
		Impressions:  impressions,
		Clicks:       clicks,
		Conversions:  conversions,
	}
	if impressions > 0 {
		r.CTR = float64(clicks) / float64(impressions) * 100
	}
	if clicks > 0 {
		r.CVR = conversions / float64(clicks) * 100
	}
	return r
}

func TestTopConverters_CutsAtHalfOfConversions(t *testing.T) {
	products := []warehouse.ProductRow{
		prodRow("a", 1000, 100, 60),
		prodRow("b", 1000, 100, 30),
		prodRow("c", 1000, 100, 10),
	}
	got := topConverters(products, 100)
	// "a" alone covers 60 of 100 conversions, past the 50% cutoff.
	if len(got) != 1 || got[0].ItemID != "a" {
		t.Fatalf("top converters = %+v", got)
	}
}

func TestTopConverters_RanksByCVR(t *testing.T) {
	products := []warehouse.ProductRow{
		prodRow("low-cvr", 1000, 200, 10),
		prodRow("high-cvr", 1000, 20, 10),
	}
	got := topConverters(products, 20)
	if got[0].ItemID != "high-cvr" {
		t.Fatalf("expected CVR-ranked head, got %+v", got)
	}
}

func TestLowestConverters_RequiresClicksAndNoConversions(t *testing.T) {
	products := []warehouse.ProductRow{
		prodRow("converted", 1000, 50, 5),
		prodRow("clicked", 1000, 80, 0),
		prodRow("unclicked", 1000, 0, 0),
	}
	got := lowestConverters(products)
	if len(got) != 1 || got[0].ItemID != "clicked" {
		t.Fatalf("lowest converters = %+v", got)
	}
	if got[0].Conversions != 0 || got[0].CVR != 0 {
		t.Fatalf("lowest converter should report zero conversions: %+v", got[0])
	}
}

func TestTopClickThrough_BreaksCTRTiesByImpressions(t *testing.T) {
	products := []warehouse.ProductRow{
		prodRow("small", 100, 10, 1),
		prodRow("large", 10000, 1000, 1),
	}
	got := topClickThrough(products)
	if len(got) != 2 || got[0].ItemID != "large" {
		t.Fatalf("tie on CTR should rank by impressions, got %+v", got)
	}
}

func TestHighImpressionsNoClicks(t *testing.T) {
	products := []warehouse.ProductRow{
		prodRow("visible-unclicked", 5000, 0, 0),
		prodRow("clicked", 5000, 10, 0),
	}
	got := highImpressionsNoClicks(products)
	if len(got) != 1 || got[0].ItemID != "visible-unclicked" {
		t.Fatalf("high impressions no clicks = %+v", got)
	}
	if got[0].Clicks != 0 || got[0].CTR != 0 {
		t.Fatalf("zero-click row should zero its rates: %+v", got[0])
	}
}

func TestTopConverters_CapsAtLimit(t *testing.T) {
	var products []warehouse.ProductRow
	for i := 0; i < limitTopConverters+100; i++ {
		products = append(products, prodRow("p", 1000, 100, 1))
	}
	// A huge total keeps the cumulative 50% cutoff out of reach, so only the
	// hard cap limits the list.
	got := topConverters(products, 1e9)
	if len(got) != limitTopConverters {
		t.Fatalf("top converters capped at %d, got %d", limitTopConverters, len(got))
	}
}
