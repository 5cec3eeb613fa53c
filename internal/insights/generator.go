package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/repos"
	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/types"
)

// All generated insights hang off the overview page's insights tab.
const (
	pageType = "overview"
	tabName  = "insights"

	modelName       = "placeholder"
	modelVersion    = "v1"
	confidenceScore = 0.5
)

type Options struct {
	Retailer string
	Month    string
	Style    string
	DryRun   bool
}

// Result summarizes one generated period.
type Result struct {
	RetailerID   string
	Month        string
	InsightCount int
	JobID        string
}

type Generator struct {
	retailers  repos.RetailerRepo
	keywords   repos.KeywordsSnapshotRepo
	categories repos.CategorySnapshotRepo
	products   repos.ProductSnapshotRepo
	insights   repos.AIInsightRepo
	jobs       repos.GenerationJobRepo
	log        *logger.Logger
}

func NewGenerator(
	retailers repos.RetailerRepo,
	keywords repos.KeywordsSnapshotRepo,
	categories repos.CategorySnapshotRepo,
	products repos.ProductSnapshotRepo,
	insights repos.AIInsightRepo,
	jobs repos.GenerationJobRepo,
	baseLog *logger.Logger,
) *Generator {
	return &Generator{
		retailers:  retailers,
		keywords:   keywords,
		categories: categories,
		products:   products,
		insights:   insights,
		jobs:       jobs,
		log:        baseLog.With("service", "AIInsightsGenerator"),
	}
}

// Run regenerates insights for every period where a constituent snapshot is
// newer than the newest insight row. Each period runs under a persisted job
// so callers can poll progress; a period failure marks its job failed and
// the batch continues.
func (g *Generator) Run(ctx context.Context, opts Options) ([]Result, error) {
	style := opts.Style
	if style == "" {
		style = StyleStandard
	}
	g.log.Info("Starting AI insights generation",
		"dry_run", opts.DryRun, "retailer", opts.Retailer, "month", opts.Month, "style", style)

	retailers, err := g.retailers.GetEnabled(ctx, nil, opts.Retailer)
	if err != nil {
		return nil, fmt.Errorf("get enabled retailers: %w", err)
	}

	var results []Result
	for _, retailer := range retailers {
		periods, err := g.periodsToGenerate(ctx, retailer.RetailerID, opts)
		if err != nil {
			g.log.Error("Failed to identify periods", "retailer", retailer.RetailerID, "error", err)
			continue
		}

		for _, period := range periods {
			res, err := g.generatePeriod(ctx, retailer.RetailerID, period, style, opts.DryRun)
			if err != nil {
				g.log.Error("Failed to generate insights", "retailer", retailer.RetailerID, "month", period.Label(), "error", err)
				continue
			}
			if res != nil {
				results = append(results, *res)
			}
		}
	}

	g.log.Info("AI insights generation complete", "periods", len(results))
	return results, nil
}

// periodsToGenerate keeps periods where the newest of the three snapshot
// watermarks passed the newest insight update, or no insights exist yet.
func (g *Generator) periodsToGenerate(ctx context.Context, retailerID string, opts Options) ([]snapshots.Period, error) {
	var candidates []types.KeywordsSnapshot
	if opts.Month != "" {
		p, err := snapshots.ParseMonth(opts.Month)
		if err != nil {
			return nil, err
		}
		snap, err := g.keywords.GetByPeriod(ctx, nil, retailerID, p.RangeStart, p.RangeEnd)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			return nil, nil
		}
		candidates = []types.KeywordsSnapshot{*snap}
	} else {
		var err error
		candidates, err = g.keywords.ListMonths(ctx, nil, retailerID)
		if err != nil {
			return nil, err
		}
	}

	var periods []snapshots.Period
	for _, snap := range candidates {
		p := snapshots.Period{
			Year:       snap.RangeStart.Year(),
			Month:      int(snap.RangeStart.Month()),
			RangeStart: snap.RangeStart,
			RangeEnd:   snap.RangeEnd,
		}

		newest := snap.LastUpdated
		if cs, err := g.categories.GetByPeriod(ctx, nil, retailerID, p.RangeStart, p.RangeEnd); err != nil {
			return nil, err
		} else if cs != nil && cs.LastUpdated.After(newest) {
			newest = cs.LastUpdated
		}
		if ps, err := g.products.GetByPeriod(ctx, nil, retailerID, p.RangeStart, p.RangeEnd); err != nil {
			return nil, err
		} else if ps != nil && ps.LastUpdated.After(newest) {
			newest = ps.LastUpdated
		}

		updatedAt, err := g.insights.MaxUpdatedAt(ctx, nil, retailerID, p.RangeStart, p.RangeEnd)
		if err != nil {
			return nil, err
		}
		if updatedAt == nil || newest.After(*updatedAt) {
			periods = append(periods, p)
		}
	}
	return periods, nil
}

func (g *Generator) generatePeriod(ctx context.Context, retailerID string, period snapshots.Period, style string, dryRun bool) (*Result, error) {
	insightRows, warnings, err := g.buildInsights(ctx, retailerID, period, style)
	if err != nil {
		return nil, err
	}
	for _, warning := range warnings {
		g.log.Warn("Insight generation warning", "retailer", retailerID, "month", period.Label(), "warning", warning)
	}
	if len(insightRows) == 0 {
		g.log.Info("No insights for period", "retailer", retailerID, "month", period.Label())
		return nil, nil
	}

	if dryRun {
		g.log.Info("Dry run: would upsert insights", "retailer", retailerID, "month", period.Label(), "count", len(insightRows))
		return &Result{RetailerID: retailerID, Month: period.Label(), InsightCount: len(insightRows)}, nil
	}

	job, err := g.jobs.Create(ctx, nil, &types.InsightGenerationJob{
		RetailerID:  retailerID,
		PeriodType:  types.PeriodTypeMonth,
		PeriodStart: period.RangeStart,
		PeriodEnd:   period.RangeEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("create generation job: %w", err)
	}
	if err := g.jobs.MarkRunning(ctx, nil, job.ID); err != nil {
		return nil, fmt.Errorf("mark job running: %w", err)
	}

	for _, insight := range insightRows {
		if err := g.insights.Upsert(ctx, nil, insight); err != nil {
			if failErr := g.jobs.MarkFailed(ctx, nil, job.ID, err.Error()); failErr != nil {
				g.log.Error("Failed to mark job failed", "job_id", job.ID, "error", failErr)
			}
			return nil, fmt.Errorf("upsert insight %s: %w", insight.InsightType, err)
		}
	}

	if err := g.jobs.MarkCompleted(ctx, nil, job.ID); err != nil {
		return nil, fmt.Errorf("mark job completed: %w", err)
	}

	g.log.Info("Generated insights", "retailer", retailerID, "month", period.Label(), "count", len(insightRows), "job_id", job.ID)
	return &Result{RetailerID: retailerID, Month: period.Label(), InsightCount: len(insightRows), JobID: job.ID.String()}, nil
}

// buildInsights assembles one row per insight type from whichever snapshots
// exist. Missing snapshots produce warnings, not failures.
func (g *Generator) buildInsights(ctx context.Context, retailerID string, period snapshots.Period, style string) ([]*types.AIInsight, []string, error) {
	var rows []*types.AIInsight
	var warnings []string

	kw, err := g.keywords.GetByPeriod(ctx, nil, retailerID, period.RangeStart, period.RangeEnd)
	if err != nil {
		return nil, nil, err
	}
	if kw == nil {
		warnings = append(warnings, "missing keywords snapshot for insight panel generation")
	} else {
		data := GenerateInsightsPanel(PanelInput{
			TotalKeywords:            kw.TotalKeywords,
			OverallCTR:               derefFloat(kw.OverallCTR),
			OverallCVR:               derefFloat(kw.OverallCVR),
			TierStarCount:            kw.TierStarCount,
			TierStrongCount:          kw.TierStrongCount,
			TierUnderperformingCount: kw.TierUnderperformingCount,
			TierPoorCount:            kw.TierPoorCount,
			Style:                    style,
		})
		row, err := g.insightRow(retailerID, period, types.InsightTypePanel, data)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}

	cs, err := g.categories.GetByPeriod(ctx, nil, retailerID, period.RangeStart, period.RangeEnd)
	if err != nil {
		return nil, nil, err
	}
	if cs == nil {
		warnings = append(warnings, "missing category snapshot for market analysis generation")
	} else {
		data := GenerateMarketAnalysis(MarketInput{
			TotalCategories: cs.TotalCategories,
			OverallCTR:      derefFloat(cs.OverallCTR),
			OverallCVR:      derefFloat(cs.OverallCVR),
			HealthyCount:    cs.HealthHealthyCount,
			StarCount:       cs.HealthStarCount,
			Style:           style,
		})
		row, err := g.insightRow(retailerID, period, types.InsightTypeMarketAnalysis, data)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}

	ps, err := g.products.GetByPeriod(ctx, nil, retailerID, period.RangeStart, period.RangeEnd)
	if err != nil {
		return nil, nil, err
	}
	if ps == nil {
		warnings = append(warnings, "missing product snapshot for recommendations generation")
	} else {
		data := GenerateRecommendations(RecommendationInput{
			TotalProducts:          ps.TotalProducts,
			StarCount:              ps.StarCount,
			GoodCount:              ps.GoodCount,
			UnderperformerCount:    ps.UnderperformerCount,
			WastedClicksPercentage: ps.WastedClicksPercentage,
			Top1Share:              ps.Top1PctConversionsShare,
			Style:                  style,
		})
		row, err := g.insightRow(retailerID, period, types.InsightTypeRecommendation, data)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}

	return rows, warnings, nil
}

func (g *Generator) insightRow(retailerID string, period snapshots.Period, insightType string, data interface{}) (*types.AIInsight, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s insight: %w", insightType, err)
	}
	return &types.AIInsight{
		RetailerID:      retailerID,
		PageType:        pageType,
		TabName:         tabName,
		PeriodType:      types.PeriodTypeMonth,
		PeriodStart:     period.RangeStart,
		PeriodEnd:       period.RangeEnd,
		InsightType:     insightType,
		InsightData:     datatypes.JSON(raw),
		ModelName:       modelName,
		ModelVersion:    modelVersion,
		ConfidenceScore: confidenceScore,
		Status:          types.InsightStatusPending,
		IsActive:        false,
		CreatedAt:       time.Now(),
	}, nil
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
