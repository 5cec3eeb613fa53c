package snapshots

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/shareview/analytics/internal/types"
	"github.com/shareview/analytics/internal/warehouse"
)

// Competitor cap for the snapshot's JSONB payload.
const limitCompetitors = 20

type snapshotCompetitor struct {
	ID              string   `json:"id"`
	OverlapRate     float64  `json:"overlap_rate"`
	OutrankingShare float64  `json:"outranking_share"`
	ImpressionShare *float64 `json:"impression_share"`
	CampaignCount   int      `json:"campaign_count"`
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round4p(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round4(*v)
	return &r
}

// pickThreat scores competitors by overlap x (1 - outranking): maximal when
// they show up in our auctions often and we rarely outrank them.
func pickThreat(competitors []warehouse.AuctionCompetitorRow) warehouse.AuctionCompetitorRow {
	best := competitors[0]
	bestScore := best.AvgOverlap * (1 - best.AvgOutranking)
	for _, c := range competitors[1:] {
		score := c.AvgOverlap * (1 - c.AvgOutranking)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

// pickOpportunity scores by overlap x outranking: competitors we already
// beat in shared auctions, where pushing further wins visibility.
func pickOpportunity(competitors []warehouse.AuctionCompetitorRow) warehouse.AuctionCompetitorRow {
	best := competitors[0]
	bestScore := best.AvgOverlap * best.AvgOutranking
	for _, c := range competitors[1:] {
		score := c.AvgOverlap * c.AvgOutranking
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

func (g *Generator) generateAuctionSnapshot(ctx context.Context, u unit) (Result, error) {
	// Auction facts are monthly and keyed by the first of the month.
	competitors, err := g.warehouse.AuctionCompetitorRows(ctx, u.RetailerID, u.RangeStart)
	if err != nil {
		return Result{}, fmt.Errorf("auction competitor rows: %w", err)
	}
	if len(competitors) == 0 {
		return Result{Domain: DomainAuctions, RetailerID: u.RetailerID, Month: u.Label(), Operation: OpSkipped}, nil
	}

	total := len(competitors)

	// The warehouse has no direct row for our own impression share; the
	// competitive field's average stands in as market context.
	var imprShareSum float64
	var imprShareN int
	var overlapSum, outrankingSum float64
	for _, c := range competitors {
		if c.AvgImprShare != nil {
			imprShareSum += *c.AvgImprShare
			imprShareN++
		}
		overlapSum += c.AvgOverlap
		outrankingSum += c.AvgOutranking
	}
	var avgImprShare *float64
	if imprShareN > 0 {
		v := round4(imprShareSum / float64(imprShareN))
		avgImprShare = &v
	}
	avgOverlap := overlapSum / float64(total)
	avgOutranking := outrankingSum / float64(total)

	// Rows arrive sorted by overlap, so the head is the top competitor.
	top := competitors[0]
	threat := pickThreat(competitors)
	opportunity := pickOpportunity(competitors)

	capped := competitors
	if len(capped) > limitCompetitors {
		capped = capped[:limitCompetitors]
	}
	payload := make([]snapshotCompetitor, 0, len(capped))
	for _, c := range capped {
		payload = append(payload, snapshotCompetitor{
			ID:              c.ShopDisplayName,
			OverlapRate:     round4(c.AvgOverlap),
			OutrankingShare: round4(c.AvgOutranking),
			ImpressionShare: round4p(c.AvgImprShare),
			CampaignCount:   c.CampaignCount,
		})
	}
	competitorsJSON, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("marshal competitors: %w", err)
	}

	ref := func(v float64) *float64 { r := round4(v); return &r }
	snap := &types.AuctionSnapshot{
		RetailerID: u.RetailerID,
		RangeType:  types.PeriodTypeMonth,
		RangeStart: u.RangeStart,
		RangeEnd:   u.RangeEnd,

		AvgImpressionShare: avgImprShare,
		TotalCompetitors:   total,
		AvgOverlapRate:     round4(avgOverlap),
		AvgOutrankingShare: round4(avgOutranking),
		AvgBeingOutranked:  round4(1 - avgOutranking),

		Competitors: competitorsJSON,

		TopCompetitorID:            &top.ShopDisplayName,
		TopCompetitorOverlapRate:   ref(top.AvgOverlap),
		TopCompetitorOutrankingYou: ref(top.AvgOutranking),

		BiggestThreatID:            &threat.ShopDisplayName,
		BiggestThreatOverlapRate:   ref(threat.AvgOverlap),
		BiggestThreatOutrankingYou: ref(threat.AvgOutranking),

		BestOpportunityID:            &opportunity.ShopDisplayName,
		BestOpportunityOverlapRate:   ref(opportunity.AvgOverlap),
		BestOpportunityYouOutranking: ref(opportunity.AvgOutranking),
	}

	created, err := g.auctions.Upsert(ctx, nil, snap)
	if err != nil {
		return Result{}, fmt.Errorf("upsert auction snapshot: %w", err)
	}

	op := OpUpdated
	if created {
		op = OpCreated
	}
	return Result{Domain: DomainAuctions, RetailerID: u.RetailerID, Month: u.Label(), RowCount: 1, Operation: op}, nil
}
