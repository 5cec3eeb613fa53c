package snapshots

import (
	"testing"

	"github.com/shareview/analytics/internal/warehouse"
)

func competitor(name string, overlap, outranking float64) warehouse.AuctionCompetitorRow {
	return warehouse.AuctionCompetitorRow{
		ShopDisplayName: name,
		AvgOverlap:      overlap,
		AvgOutranking:   outranking,
	}
}

func TestPickThreat_HighOverlapLowOutranking(t *testing.T) {
	competitors := []warehouse.AuctionCompetitorRow{
		competitor("dominated", 0.9, 0.95),
		competitor("threat", 0.8, 0.1),
		competitor("rare", 0.1, 0.0),
	}
	if got := pickThreat(competitors); got.ShopDisplayName != "threat" {
		t.Fatalf("threat = %q", got.ShopDisplayName)
	}
}

func TestPickOpportunity_HighOverlapHighOutranking(t *testing.T) {
	competitors := []warehouse.AuctionCompetitorRow{
		competitor("threat", 0.8, 0.1),
		competitor("opportunity", 0.7, 0.9),
		competitor("rare", 0.1, 1.0),
	}
	if got := pickOpportunity(competitors); got.ShopDisplayName != "opportunity" {
		t.Fatalf("opportunity = %q", got.ShopDisplayName)
	}
}

func TestRound4(t *testing.T) {
	if got := round4(0.123456); got != 0.1235 {
		t.Fatalf("round4 = %v", got)
	}
	if got := round4p(nil); got != nil {
		t.Fatalf("round4p(nil) should be nil")
	}
}
