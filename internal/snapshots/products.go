package snapshots

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/shareview/analytics/internal/types"
	"github.com/shareview/analytics/internal/warehouse"
)

// List caps for the four product classification groups.
const (
	limitTopConverters           = 500
	limitLowestConverters        = 200
	limitTopClickThrough         = 500
	limitHighImpressionsNoClicks = 200
)

type classifiedProduct struct {
	ItemID       string  `json:"item_id"`
	ProductTitle string  `json:"product_title"`
	Impressions  int64   `json:"impressions"`
	Clicks       int64   `json:"clicks"`
	Conversions  float64 `json:"conversions"`
	CTR          float64 `json:"ctr"`
	CVR          float64 `json:"cvr"`
}

type productClassifications struct {
	TopConverters           []classifiedProduct `json:"top_converters"`
	LowestConverters        []classifiedProduct `json:"lowest_converters"`
	TopClickThrough         []classifiedProduct `json:"top_click_through"`
	HighImpressionsNoClicks []classifiedProduct `json:"high_impressions_no_clicks"`
}

func toClassifiedProduct(p warehouse.ProductRow) classifiedProduct {
	return classifiedProduct{
		ItemID:       p.ItemID,
		ProductTitle: p.ProductTitle,
		Impressions:  p.Impressions,
		Clicks:       p.Clicks,
		Conversions:  round2(p.Conversions),
		CTR:          round2(p.CTR),
		CVR:          round2(p.CVR),
	}
}

// topConverters ranks converting products by CVR and keeps whichever is
// smaller: the cap, or the head of the list that accounts for half of all
// conversions.
func topConverters(products []warehouse.ProductRow, totalConversions float64) []classifiedProduct {
	converting := make([]warehouse.ProductRow, 0, len(products))
	for _, p := range products {
		if p.Conversions > 0 {
			converting = append(converting, p)
		}
	}
	if len(converting) == 0 {
		return nil
	}
	sort.Slice(converting, func(i, j int) bool { return converting[i].CVR > converting[j].CVR })

	cumulative := 0.0
	cutoff := 0
	for i, p := range converting {
		cumulative += p.Conversions
		cutoff = i
		if cumulative >= totalConversions*0.5 {
			break
		}
	}
	count := cutoff + 1
	if count > limitTopConverters {
		count = limitTopConverters
	}
	out := make([]classifiedProduct, 0, count)
	for _, p := range converting[:count] {
		out = append(out, toClassifiedProduct(p))
	}
	return out
}

func lowestConverters(products []warehouse.ProductRow) []classifiedProduct {
	clicked := make([]warehouse.ProductRow, 0, len(products))
	for _, p := range products {
		if p.Conversions == 0 && p.Clicks > 0 {
			clicked = append(clicked, p)
		}
	}
	sort.Slice(clicked, func(i, j int) bool { return clicked[i].Clicks > clicked[j].Clicks })
	if len(clicked) > limitLowestConverters {
		clicked = clicked[:limitLowestConverters]
	}
	out := make([]classifiedProduct, 0, len(clicked))
	for _, p := range clicked {
		cp := toClassifiedProduct(p)
		cp.Conversions = 0
		cp.CVR = 0
		out = append(out, cp)
	}
	return out
}

// topClickThrough ranks by CTR with impressions breaking near-ties.
func topClickThrough(products []warehouse.ProductRow) []classifiedProduct {
	engaged := make([]warehouse.ProductRow, 0, len(products))
	for _, p := range products {
		if p.Impressions > 0 && p.Clicks > 0 {
			engaged = append(engaged, p)
		}
	}
	sort.Slice(engaged, func(i, j int) bool {
		if math.Abs(engaged[i].CTR-engaged[j].CTR) > 0.01 {
			return engaged[i].CTR > engaged[j].CTR
		}
		return engaged[i].Impressions > engaged[j].Impressions
	})
	if len(engaged) > limitTopClickThrough {
		engaged = engaged[:limitTopClickThrough]
	}
	out := make([]classifiedProduct, 0, len(engaged))
	for _, p := range engaged {
		out = append(out, toClassifiedProduct(p))
	}
	return out
}

func highImpressionsNoClicks(products []warehouse.ProductRow) []classifiedProduct {
	unseen := make([]warehouse.ProductRow, 0, len(products))
	for _, p := range products {
		if p.Impressions > 0 && p.Clicks == 0 {
			unseen = append(unseen, p)
		}
	}
	sort.Slice(unseen, func(i, j int) bool { return unseen[i].Impressions > unseen[j].Impressions })
	if len(unseen) > limitHighImpressionsNoClicks {
		unseen = unseen[:limitHighImpressionsNoClicks]
	}
	out := make([]classifiedProduct, 0, len(unseen))
	for _, p := range unseen {
		out = append(out, classifiedProduct{
			ItemID:       p.ItemID,
			ProductTitle: p.ProductTitle,
			Impressions:  p.Impressions,
		})
	}
	return out
}

func (g *Generator) generateProductSnapshot(ctx context.Context, u unit) (Result, error) {
	agg, err := g.warehouse.ProductAggregate(ctx, u.RetailerID, u.RangeStart, u.RangeEnd)
	if err != nil {
		return Result{}, fmt.Errorf("product aggregate: %w", err)
	}
	if agg.RowCount == 0 {
		return Result{Domain: DomainProducts, RetailerID: u.RetailerID, Month: u.Label(), Operation: OpSkipped}, nil
	}

	products, err := g.warehouse.ProductRows(ctx, u.RetailerID, u.RangeStart, u.RangeEnd)
	if err != nil {
		return Result{}, fmt.Errorf("product rows: %w", err)
	}

	classifications := productClassifications{
		TopConverters:           topConverters(products, agg.TotalConversions),
		LowestConverters:        lowestConverters(products),
		TopClickThrough:         topClickThrough(products),
		HighImpressionsNoClicks: highImpressionsNoClicks(products),
	}
	payload, err := json.Marshal(classifications)
	if err != nil {
		return Result{}, fmt.Errorf("marshal product classifications: %w", err)
	}

	snap := &types.ProductSnapshot{
		RetailerID:       u.RetailerID,
		RangeType:        types.PeriodTypeMonth,
		RangeStart:       u.RangeStart,
		RangeEnd:         u.RangeEnd,
		TotalProducts:    agg.TotalProducts,
		TotalImpressions: agg.TotalImpressions,
		TotalClicks:      agg.TotalClicks,
		TotalConversions: agg.TotalConversions,
		AvgCTR:           agg.AvgCTR,
		AvgCVR:           agg.AvgCVR,

		ProductsWithConversions:         agg.ProductsWithConversions,
		ProductsWithClicksNoConversions: agg.ProductsWithClicksNoConversions,
		ClicksWithoutConversions:        agg.ClicksWithoutConversions,

		ProductClassifications: payload,
	}

	created, err := g.products.Upsert(ctx, nil, snap)
	if err != nil {
		return Result{}, fmt.Errorf("upsert product snapshot: %w", err)
	}

	op := OpUpdated
	if created {
		op = OpCreated
	}
	return Result{Domain: DomainProducts, RetailerID: u.RetailerID, Month: u.Label(), RowCount: agg.TotalProducts, Operation: op}, nil
}
