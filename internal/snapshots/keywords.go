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

// Qualification floors and per-quadrant caps for the keyword quadrant
// analysis. Terms below the floors are too thin to bucket meaningfully.
const (
	minKeywordImpressions = 50
	minKeywordClicks      = 5

	limitWinners              = 100
	limitCSSWinsRetailerLoses = 50
	limitHiddenGems           = 100
	limitPoorPerformers       = 50
)

type quadrantKeyword struct {
	SearchTerm  string  `json:"search_term"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions float64 `json:"conversions"`
	CTR         float64 `json:"ctr"`
	CVR         float64 `json:"cvr"`
}

type keywordQuadrants struct {
	Winners               []quadrantKeyword `json:"winners"`
	CSSWinsRetailerLoses  []quadrantKeyword `json:"css_wins_retailer_loses"`
	HiddenGems            []quadrantKeyword `json:"hidden_gems"`
	PoorPerformers        []quadrantKeyword `json:"poor_performers"`
	MedianCTR             float64           `json:"median_ctr"`
	Qualification         struct {
		MinImpressions int `json:"min_impressions"`
		MinClicks      int `json:"min_clicks"`
	} `json:"qualification"`
}

// medianCTR is the adaptive quadrant split point across qualified terms.
func medianCTR(rows []warehouse.KeywordRow) float64 {
	if len(rows) == 0 {
		return 0
	}
	ctrs := make([]float64, len(rows))
	for i, r := range rows {
		ctrs[i] = r.CTR
	}
	sort.Float64s(ctrs)
	mid := len(ctrs) / 2
	if len(ctrs)%2 == 0 {
		return (ctrs[mid-1] + ctrs[mid]) / 2
	}
	return ctrs[mid]
}

// buildQuadrants splits qualified terms on the median CTR and on whether
// they converted at all, capping each quadrant. Converting quadrants rank by
// conversions, non-converting ones by clicks.
func buildQuadrants(rows []warehouse.KeywordRow, median float64) keywordQuadrants {
	var winners, cssWins, hiddenGems, poorPerformers []warehouse.KeywordRow
	for _, r := range rows {
		switch {
		case r.CTR >= median && r.Conversions > 0:
			winners = append(winners, r)
		case r.CTR >= median:
			cssWins = append(cssWins, r)
		case r.Conversions > 0:
			hiddenGems = append(hiddenGems, r)
		default:
			poorPerformers = append(poorPerformers, r)
		}
	}

	byConversions := func(rs []warehouse.KeywordRow) {
		sort.Slice(rs, func(i, j int) bool { return rs[i].Conversions > rs[j].Conversions })
	}
	byClicks := func(rs []warehouse.KeywordRow) {
		sort.Slice(rs, func(i, j int) bool { return rs[i].Clicks > rs[j].Clicks })
	}
	byConversions(winners)
	byClicks(cssWins)
	byConversions(hiddenGems)
	byClicks(poorPerformers)

	q := keywordQuadrants{
		Winners:              toQuadrantKeywords(winners, limitWinners),
		CSSWinsRetailerLoses: toQuadrantKeywords(cssWins, limitCSSWinsRetailerLoses),
		HiddenGems:           toQuadrantKeywords(hiddenGems, limitHiddenGems),
		PoorPerformers:       toQuadrantKeywords(poorPerformers, limitPoorPerformers),
		MedianCTR:            round2(median),
	}
	q.Qualification.MinImpressions = minKeywordImpressions
	q.Qualification.MinClicks = minKeywordClicks
	return q
}

func toQuadrantKeywords(rows []warehouse.KeywordRow, limit int) []quadrantKeyword {
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]quadrantKeyword, 0, len(rows))
	for _, r := range rows {
		out = append(out, quadrantKeyword{
			SearchTerm:  r.SearchTerm,
			Impressions: r.Impressions,
			Clicks:      r.Clicks,
			Conversions: round2(r.Conversions),
			CTR:         round2(r.CTR),
			CVR:         round2(r.CVR),
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (g *Generator) generateKeywordSnapshot(ctx context.Context, p unit) (Result, error) {
	agg, err := g.warehouse.KeywordAggregate(ctx, p.RetailerID, p.RangeStart, p.RangeEnd)
	if err != nil {
		return Result{}, fmt.Errorf("keyword aggregate: %w", err)
	}
	if agg.RowCount == 0 {
		return Result{Domain: DomainKeywords, RetailerID: p.RetailerID, Month: p.Label(), Operation: OpSkipped}, nil
	}

	qualified, err := g.warehouse.QualifiedKeywordRows(ctx, p.RetailerID, p.RangeStart, p.RangeEnd, minKeywordImpressions, minKeywordClicks)
	if err != nil {
		return Result{}, fmt.Errorf("qualified keyword rows: %w", err)
	}

	quadrants := buildQuadrants(qualified, medianCTR(qualified))
	topKeywords, err := json.Marshal(quadrants)
	if err != nil {
		return Result{}, fmt.Errorf("marshal keyword quadrants: %w", err)
	}

	snap := &types.KeywordsSnapshot{
		RetailerID:       p.RetailerID,
		RangeType:        types.PeriodTypeMonth,
		RangeStart:       p.RangeStart,
		RangeEnd:         p.RangeEnd,
		TotalKeywords:    agg.TotalKeywords,
		TotalImpressions: agg.TotalImpressions,
		TotalClicks:      agg.TotalClicks,
		TotalConversions: agg.TotalConversions,
		OverallCTR:       agg.OverallCTR,
		OverallCVR:       agg.OverallCVR,
		TopKeywords:      topKeywords,
	}

	created, err := g.keywords.Upsert(ctx, nil, snap)
	if err != nil {
		return Result{}, fmt.Errorf("upsert keywords snapshot: %w", err)
	}

	op := OpUpdated
	if created {
		op = OpCreated
	}
	return Result{Domain: DomainKeywords, RetailerID: p.RetailerID, Month: p.Label(), RowCount: agg.TotalKeywords, Operation: op}, nil
}
