package snapshots

import (
	"testing"

	"github.com/shareview/analytics/internal/warehouse"
)

func kwRow(term string, impressions, clicks int64, conversions, ctr float64) warehouse.KeywordRow {
	return warehouse.KeywordRow{
		SearchTerm:  term,
		Impressions: impressions,
		Clicks:      clicks,
		Conversions: conversions,
		CTR:         ctr,
	}
}

func TestMedianCTR(t *testing.T) {
	if got := medianCTR(nil); got != 0 {
		t.Fatalf("median of empty = %v, want 0", got)
	}
	odd := []warehouse.KeywordRow{
		kwRow("a", 100, 10, 0, 1.0),
		kwRow("b", 100, 10, 0, 3.0),
		kwRow("c", 100, 10, 0, 2.0),
	}
	if got := medianCTR(odd); got != 2.0 {
		t.Fatalf("odd median = %v, want 2.0", got)
	}
	even := append(odd, kwRow("d", 100, 10, 0, 4.0))
	if got := medianCTR(even); got != 2.5 {
		t.Fatalf("even median = %v, want 2.5", got)
	}
}

func TestBuildQuadrants_SplitsOnMedianAndConversions(t *testing.T) {
	rows := []warehouse.KeywordRow{
		kwRow("winner", 1000, 100, 12, 5.0),
		kwRow("css-win", 1000, 80, 0, 4.5),
		kwRow("gem", 1000, 20, 6, 1.0),
		kwRow("poor", 1000, 15, 0, 0.5),
	}
	q := buildQuadrants(rows, 2.0)

	if len(q.Winners) != 1 || q.Winners[0].SearchTerm != "winner" {
		t.Fatalf("winners = %+v", q.Winners)
	}
	if len(q.CSSWinsRetailerLoses) != 1 || q.CSSWinsRetailerLoses[0].SearchTerm != "css-win" {
		t.Fatalf("css wins = %+v", q.CSSWinsRetailerLoses)
	}
	if len(q.HiddenGems) != 1 || q.HiddenGems[0].SearchTerm != "gem" {
		t.Fatalf("hidden gems = %+v", q.HiddenGems)
	}
	if len(q.PoorPerformers) != 1 || q.PoorPerformers[0].SearchTerm != "poor" {
		t.Fatalf("poor performers = %+v", q.PoorPerformers)
	}
	if q.MedianCTR != 2.0 {
		t.Fatalf("median = %v, want 2.0", q.MedianCTR)
	}
	if q.Qualification.MinImpressions != minKeywordImpressions || q.Qualification.MinClicks != minKeywordClicks {
		t.Fatalf("qualification = %+v", q.Qualification)
	}
}

func TestBuildQuadrants_MedianBoundaryGoesHigh(t *testing.T) {
	rows := []warehouse.KeywordRow{kwRow("edge", 1000, 40, 2, 2.0)}
	q := buildQuadrants(rows, 2.0)
	if len(q.Winners) != 1 {
		t.Fatalf("CTR exactly at median should land in the high-CTR quadrants, got %+v", q)
	}
}

func TestBuildQuadrants_RanksAndCaps(t *testing.T) {
	var rows []warehouse.KeywordRow
	for i := 0; i < limitWinners+25; i++ {
		rows = append(rows, kwRow("kw", 1000, 50, float64(i+1), 5.0))
	}
	q := buildQuadrants(rows, 2.0)
	if len(q.Winners) != limitWinners {
		t.Fatalf("winners capped at %d, got %d", limitWinners, len(q.Winners))
	}
	if q.Winners[0].Conversions != float64(limitWinners+25) {
		t.Fatalf("winners should rank by conversions desc, head = %v", q.Winners[0].Conversions)
	}
}
