// Package snapshots aggregates raw warehouse facts into monthly snapshot
// rows, one per domain. Aggregation only; tier classification is a separate
// stage.
package snapshots

import (
	"context"
	"fmt"
	"time"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/repos"
	"github.com/shareview/analytics/internal/warehouse"
)

const (
	DomainKeywords   = "keywords"
	DomainCategories = "categories"
	DomainProducts   = "products"
	DomainAuctions   = "auctions"
	DomainCoverage   = "coverage"
)

const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpSkipped = "skipped"
)

// Options narrow a run. Month is YYYY-MM; empty means auto-detect months
// whose source data is newer than the existing snapshot. Force reprocesses
// regardless of freshness.
type Options struct {
	Retailer string
	Month    string
	DryRun   bool
	Force    bool
}

// Result describes one domain snapshot write.
type Result struct {
	Domain     string
	RetailerID string
	Month      string
	RowCount   int
	Operation  string
}

// unit is one retailer/month of work.
type unit struct {
	RetailerID string
	Period
	LastFetch time.Time
}

type Generator struct {
	warehouse     *warehouse.Store
	retailers     repos.RetailerRepo
	keywords      repos.KeywordsSnapshotRepo
	categories    repos.CategorySnapshotRepo
	categoryNodes repos.CategoryNodeSnapshotRepo
	products      repos.ProductSnapshotRepo
	auctions      repos.AuctionSnapshotRepo
	coverage      repos.CoverageSnapshotRepo
	log           *logger.Logger
}

func NewGenerator(
	wh *warehouse.Store,
	retailers repos.RetailerRepo,
	keywords repos.KeywordsSnapshotRepo,
	categories repos.CategorySnapshotRepo,
	categoryNodes repos.CategoryNodeSnapshotRepo,
	products repos.ProductSnapshotRepo,
	auctions repos.AuctionSnapshotRepo,
	coverage repos.CoverageSnapshotRepo,
	baseLog *logger.Logger,
) *Generator {
	return &Generator{
		warehouse:     wh,
		retailers:     retailers,
		keywords:      keywords,
		categories:    categories,
		categoryNodes: categoryNodes,
		products:      products,
		auctions:      auctions,
		coverage:      coverage,
		log:           baseLog.With("service", "SnapshotGenerator"),
	}
}

// Run processes every enabled retailer and every eligible month. A failure
// inside one retailer/month unit is logged and skipped; the batch continues.
func (g *Generator) Run(ctx context.Context, opts Options) ([]Result, error) {
	g.log.Info("Starting snapshot generation", "dry_run", opts.DryRun, "retailer", opts.Retailer, "month", opts.Month)

	retailers, err := g.retailers.GetEnabled(ctx, nil, opts.Retailer)
	if err != nil {
		return nil, fmt.Errorf("list enabled retailers: %w", err)
	}
	if len(retailers) == 0 {
		g.log.Info("No enabled retailers found")
		return nil, nil
	}

	var results []Result
	for _, retailer := range retailers {
		units, err := g.unitsToProcess(ctx, retailer.RetailerID, opts)
		if err != nil {
			g.log.Error("Failed to detect months to process", "retailer", retailer.RetailerID, "error", err)
			continue
		}
		if len(units) == 0 {
			g.log.Info("All snapshots up to date", "retailer", retailer.RetailerID)
			continue
		}

		for _, u := range units {
			g.log.Info("Processing month",
				"retailer", u.RetailerID,
				"month", u.Label(),
				"source_updated", u.LastFetch,
			)
			if opts.DryRun {
				g.previewUnit(ctx, u)
				continue
			}
			unitResults, err := g.generateUnit(ctx, u)
			if err != nil {
				g.log.Error("Failed to generate snapshots", "retailer", u.RetailerID, "month", u.Label(), "error", err)
				continue
			}
			results = append(results, unitResults...)
		}
	}

	g.log.Info("Snapshot generation complete", "total", len(results))
	return results, nil
}

// unitsToProcess resolves which months need work: the explicit month when
// given, otherwise every month whose warehouse facts are newer than the
// existing snapshot.
func (g *Generator) unitsToProcess(ctx context.Context, retailerID string, opts Options) ([]unit, error) {
	if opts.Month != "" {
		p, err := ParseMonth(opts.Month)
		if err != nil {
			return nil, err
		}
		lastFetch, err := g.warehouse.LastFetchForRange(ctx, retailerID, p.RangeStart, p.RangeEnd)
		if err != nil {
			return nil, err
		}
		if lastFetch == nil {
			g.log.Info("No source data for requested month", "retailer", retailerID, "month", opts.Month)
			return nil, nil
		}
		return []unit{{RetailerID: retailerID, Period: p, LastFetch: *lastFetch}}, nil
	}

	months, err := g.warehouse.MonthsWithData(ctx, retailerID)
	if err != nil {
		return nil, err
	}

	var units []unit
	for _, m := range months {
		p := MonthRange(m.Year, m.Month)
		if !opts.Force {
			existing, err := g.keywords.GetByPeriod(ctx, nil, retailerID, p.RangeStart, p.RangeEnd)
			if err != nil {
				return nil, err
			}
			if existing != nil && !m.LastFetch.After(existing.LastUpdated) {
				continue
			}
		}
		units = append(units, unit{RetailerID: retailerID, Period: p, LastFetch: m.LastFetch})
	}
	return units, nil
}

func (g *Generator) generateUnit(ctx context.Context, u unit) ([]Result, error) {
	var results []Result

	generators := []func(context.Context, unit) (Result, error){
		g.generateKeywordSnapshot,
		g.generateCategorySnapshot,
		g.generateProductSnapshot,
		g.generateAuctionSnapshot,
		g.generateCoverageSnapshot,
	}
	for _, gen := range generators {
		res, err := gen(ctx, u)
		if err != nil {
			return nil, err
		}
		g.log.Info("Snapshot generated",
			"domain", res.Domain,
			"retailer", res.RetailerID,
			"month", res.Month,
			"operation", res.Operation,
			"rows", res.RowCount,
		)
		results = append(results, res)
	}
	return results, nil
}

// previewUnit logs the aggregates a live run would write.
func (g *Generator) previewUnit(ctx context.Context, u unit) {
	agg, err := g.warehouse.KeywordAggregate(ctx, u.RetailerID, u.RangeStart, u.RangeEnd)
	if err != nil {
		g.log.Error("Dry-run preview failed", "retailer", u.RetailerID, "month", u.Label(), "error", err)
		return
	}
	g.log.Info("Dry-run keyword preview",
		"retailer", u.RetailerID,
		"month", u.Label(),
		"total_keywords", agg.TotalKeywords,
		"total_impressions", agg.TotalImpressions,
		"total_clicks", agg.TotalClicks,
		"total_conversions", agg.TotalConversions,
	)
}
