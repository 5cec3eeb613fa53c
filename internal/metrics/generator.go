package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/repos"
	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/types"
)

type Options struct {
	Retailer string
	Month    string
	DryRun   bool
	Force    bool
}

// Result summarizes one generated period.
type Result struct {
	RetailerID  string
	Month       string
	MetricCount int
}

type Generator struct {
	retailers  repos.RetailerRepo
	keywords   repos.KeywordsSnapshotRepo
	categories repos.CategorySnapshotRepo
	products   repos.ProductSnapshotRepo
	auctions   repos.AuctionSnapshotRepo
	coverage   repos.CoverageSnapshotRepo
	metrics    repos.DomainMetricRepo
	log        *logger.Logger
}

func NewGenerator(
	retailers repos.RetailerRepo,
	keywords repos.KeywordsSnapshotRepo,
	categories repos.CategorySnapshotRepo,
	products repos.ProductSnapshotRepo,
	auctions repos.AuctionSnapshotRepo,
	coverage repos.CoverageSnapshotRepo,
	metrics repos.DomainMetricRepo,
	baseLog *logger.Logger,
) *Generator {
	return &Generator{
		retailers:  retailers,
		keywords:   keywords,
		categories: categories,
		products:   products,
		auctions:   auctions,
		coverage:   coverage,
		metrics:    metrics,
		log:        baseLog.With("service", "DomainMetricsGenerator"),
	}
}

// Run recomputes domain metrics for every period whose snapshots are newer
// than the metrics watermark. One failing period is logged and skipped.
func (g *Generator) Run(ctx context.Context, opts Options) ([]Result, error) {
	g.log.Info("Starting domain metrics generation",
		"dry_run", opts.DryRun, "force", opts.Force, "retailer", opts.Retailer, "month", opts.Month)

	retailers, err := g.retailers.GetEnabled(ctx, nil, opts.Retailer)
	if err != nil {
		return nil, fmt.Errorf("get enabled retailers: %w", err)
	}
	if len(retailers) == 0 {
		g.log.Info("No enabled retailers found")
		return nil, nil
	}

	var results []Result
	for _, retailer := range retailers {
		periods, err := g.periodsToProcess(ctx, retailer.RetailerID, opts)
		if err != nil {
			g.log.Error("Failed to identify periods", "retailer", retailer.RetailerID, "error", err)
			continue
		}

		for _, period := range periods {
			res, err := g.generatePeriod(ctx, retailer.RetailerID, period, opts.DryRun)
			if err != nil {
				g.log.Error("Failed to generate metrics", "retailer", retailer.RetailerID, "month", period.Label(), "error", err)
				continue
			}
			if res != nil {
				results = append(results, *res)
			}
		}
	}

	g.log.Info("Domain metrics generation complete", "periods", len(results))
	return results, nil
}

// periodsToProcess walks the retailer's keyword snapshot periods and keeps
// the stale ones: no metrics yet, or the snapshot written after the last
// metrics calculation.
func (g *Generator) periodsToProcess(ctx context.Context, retailerID string, opts Options) ([]snapshots.Period, error) {
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
		if !opts.Force {
			stale, err := g.isStale(ctx, retailerID, p, snap.LastUpdated)
			if err != nil {
				return nil, err
			}
			if !stale {
				return nil, nil
			}
		}
		return []snapshots.Period{p}, nil
	}

	snaps, err := g.keywords.ListMonths(ctx, nil, retailerID)
	if err != nil {
		return nil, err
	}

	var periods []snapshots.Period
	for _, snap := range snaps {
		p := snapshots.Period{
			Year:       snap.RangeStart.Year(),
			Month:      int(snap.RangeStart.Month()),
			RangeStart: snap.RangeStart,
			RangeEnd:   snap.RangeEnd,
		}
		if !opts.Force {
			stale, err := g.isStale(ctx, retailerID, p, snap.LastUpdated)
			if err != nil {
				return nil, err
			}
			if !stale {
				continue
			}
		}
		periods = append(periods, p)
	}
	return periods, nil
}

func (g *Generator) isStale(ctx context.Context, retailerID string, p snapshots.Period, lastUpdated time.Time) (bool, error) {
	calculatedAt, err := g.metrics.MaxCalculatedAt(ctx, nil, retailerID, p.RangeStart, p.RangeEnd)
	if err != nil {
		return false, err
	}
	return calculatedAt == nil || lastUpdated.After(*calculatedAt), nil
}

func (g *Generator) generatePeriod(ctx context.Context, retailerID string, period snapshots.Period, dryRun bool) (*Result, error) {
	previous := snapshots.PrevMonth(period)

	keywordsSnap, err := g.keywords.GetByPeriod(ctx, nil, retailerID, period.RangeStart, period.RangeEnd)
	if err != nil {
		return nil, err
	}
	prevKeywordsSnap, err := g.keywords.GetByPeriod(ctx, nil, retailerID, previous.RangeStart, previous.RangeEnd)
	if err != nil {
		return nil, err
	}
	categorySnap, err := g.categories.GetByPeriod(ctx, nil, retailerID, period.RangeStart, period.RangeEnd)
	if err != nil {
		return nil, err
	}
	prevCategorySnap, err := g.categories.GetByPeriod(ctx, nil, retailerID, previous.RangeStart, previous.RangeEnd)
	if err != nil {
		return nil, err
	}
	productSnap, err := g.products.GetByPeriod(ctx, nil, retailerID, period.RangeStart, period.RangeEnd)
	if err != nil {
		return nil, err
	}
	prevProductSnap, err := g.products.GetByPeriod(ctx, nil, retailerID, previous.RangeStart, previous.RangeEnd)
	if err != nil {
		return nil, err
	}
	auctionSnap, err := g.auctions.GetByPeriod(ctx, nil, retailerID, period.RangeStart, period.RangeEnd)
	if err != nil {
		return nil, err
	}
	coverageSnap, err := g.coverage.GetByPeriod(ctx, nil, retailerID, period.RangeStart, period.RangeEnd)
	if err != nil {
		return nil, err
	}

	var all []types.DomainMetric
	var warnings []string
	for _, build := range []func() ([]types.DomainMetric, []string){
		func() ([]types.DomainMetric, []string) { return buildOverviewMetrics(keywordsSnap, prevKeywordsSnap, period) },
		func() ([]types.DomainMetric, []string) { return buildKeywordsMetrics(keywordsSnap, prevKeywordsSnap, period) },
		func() ([]types.DomainMetric, []string) {
			return buildCategoriesMetrics(categorySnap, prevCategorySnap, period)
		},
		func() ([]types.DomainMetric, []string) { return buildProductsMetrics(productSnap, prevProductSnap, period) },
		func() ([]types.DomainMetric, []string) { return buildAuctionsMetrics(auctionSnap, period) },
		func() ([]types.DomainMetric, []string) { return buildCoverageMetrics(coverageSnap, period) },
	} {
		metrics, errs := build()
		all = append(all, metrics...)
		warnings = append(warnings, errs...)
	}

	for _, warning := range warnings {
		g.log.Warn("Metric calculation warning", "retailer", retailerID, "month", period.Label(), "warning", warning)
	}
	if len(all) == 0 {
		g.log.Info("No metrics for period", "retailer", retailerID, "month", period.Label())
		return nil, nil
	}

	if dryRun {
		g.log.Info("Dry run: would upsert metrics", "retailer", retailerID, "month", period.Label(), "count", len(all))
		return &Result{RetailerID: retailerID, Month: period.Label(), MetricCount: len(all)}, nil
	}

	batch := make([]*types.DomainMetric, len(all))
	for i := range all {
		batch[i] = &all[i]
	}
	if err := g.metrics.UpsertBatch(ctx, nil, batch); err != nil {
		return nil, fmt.Errorf("upsert metrics: %w", err)
	}

	g.log.Info("Generated metrics", "retailer", retailerID, "month", period.Label(), "count", len(all))
	return &Result{RetailerID: retailerID, Month: period.Label(), MetricCount: len(all)}, nil
}
