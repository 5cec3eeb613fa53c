package snapshots

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shareview/analytics/internal/types"
)

type coverageCategory struct {
	Category    string  `json:"category"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions float64 `json:"conversions"`
}

func (g *Generator) generateCoverageSnapshot(ctx context.Context, u unit) (Result, error) {
	agg, err := g.warehouse.CoverageAggregate(ctx, u.RetailerID, u.RangeStart, u.RangeEnd)
	if err != nil {
		return Result{}, fmt.Errorf("coverage aggregate: %w", err)
	}
	if agg.TotalProducts == 0 {
		return Result{Domain: DomainCoverage, RetailerID: u.RetailerID, Month: u.Label(), Operation: OpSkipped}, nil
	}

	coveragePct := float64(agg.ActiveProducts) / float64(agg.TotalProducts) * 100

	snap := &types.CoverageSnapshot{
		RetailerID:             u.RetailerID,
		RangeType:              types.PeriodTypeMonth,
		RangeStart:             u.RangeStart,
		RangeEnd:               u.RangeEnd,
		TotalProducts:          agg.TotalProducts,
		ActiveProducts:         agg.ActiveProducts,
		ZeroVisibilityProducts: agg.ZeroVisibilityProducts,
		CoveragePct:            round2(coveragePct),
	}

	// Top category by impression volume, and the weakest one as the gap
	// call-out. Category facts may be missing for a retailer; coverage still
	// writes without them.
	categories, err := g.warehouse.CoverageCategoryRows(ctx, u.RetailerID, u.RangeStart, u.RangeEnd)
	if err != nil {
		return Result{}, fmt.Errorf("coverage category rows: %w", err)
	}
	if len(categories) > 0 {
		topJSON, err := json.Marshal(coverageCategory(categories[0]))
		if err != nil {
			return Result{}, fmt.Errorf("marshal top category: %w", err)
		}
		gapJSON, err := json.Marshal(coverageCategory(categories[len(categories)-1]))
		if err != nil {
			return Result{}, fmt.Errorf("marshal biggest gap: %w", err)
		}
		snap.TopCategory = topJSON
		snap.BiggestGap = gapJSON
	}

	created, err := g.coverage.Upsert(ctx, nil, snap)
	if err != nil {
		return Result{}, fmt.Errorf("upsert coverage snapshot: %w", err)
	}

	op := OpUpdated
	if created {
		op = OpCreated
	}
	return Result{Domain: DomainCoverage, RetailerID: u.RetailerID, Month: u.Label(), RowCount: agg.TotalProducts, Operation: op}, nil
}
