// Package classifier assigns performance tiers to the entities behind each
// snapshot and writes the aggregated counts back onto the snapshot rows.
// Per-entity assignments are not persisted; only counts and, for categories,
// a capped offender list per status.
package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/repos"
	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/warehouse"
)

const (
	OpClassified = "classified"
	OpSkipped    = "skipped"
)

type Options struct {
	Retailer string
	Month    string
	DryRun   bool
}

// Result describes one domain classification for a retailer/month.
type Result struct {
	Domain     string
	RetailerID string
	Month      string
	Operation  string
}

type Classifier struct {
	warehouse  *warehouse.Store
	keywords   repos.KeywordsSnapshotRepo
	categories repos.CategorySnapshotRepo
	products   repos.ProductSnapshotRepo
	log        *logger.Logger
}

func NewClassifier(
	wh *warehouse.Store,
	keywords repos.KeywordsSnapshotRepo,
	categories repos.CategorySnapshotRepo,
	products repos.ProductSnapshotRepo,
	baseLog *logger.Logger,
) *Classifier {
	return &Classifier{
		warehouse:  wh,
		keywords:   keywords,
		categories: categories,
		products:   products,
		log:        baseLog.With("service", "SnapshotClassifier"),
	}
}

// Run classifies every snapshot whose classified_at watermark is missing or
// older than its last_updated. A failure in one retailer/month is logged and
// skipped without aborting the batch.
func (c *Classifier) Run(ctx context.Context, opts Options) ([]Result, error) {
	c.log.Info("Starting snapshot classification", "dry_run", opts.DryRun, "retailer", opts.Retailer, "month", opts.Month)

	var rangeStart, rangeEnd *time.Time
	if opts.Month != "" {
		p, err := snapshots.ParseMonth(opts.Month)
		if err != nil {
			return nil, err
		}
		rangeStart, rangeEnd = &p.RangeStart, &p.RangeEnd
	}

	keys, err := c.keywords.ListStaleForClassification(ctx, nil, opts.Retailer, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("list stale snapshots: %w", err)
	}
	c.log.Info("Found snapshots to classify", "count", len(keys))

	var results []Result
	for _, key := range keys {
		month := key.RangeStart.Format("2006-01")

		unitResults, err := c.classifyUnit(ctx, key, opts.DryRun)
		if err != nil {
			c.log.Error("Failed to classify snapshot", "retailer", key.RetailerID, "month", month, "error", err)
			continue
		}
		results = append(results, unitResults...)
	}

	c.log.Info("Snapshot classification complete", "total", len(results))
	return results, nil
}

func (c *Classifier) classifyUnit(ctx context.Context, key repos.SnapshotKey, dryRun bool) ([]Result, error) {
	kw, err := c.classifyKeywords(ctx, key, dryRun)
	if err != nil {
		return nil, fmt.Errorf("keywords: %w", err)
	}
	cat, err := c.classifyCategories(ctx, key, dryRun)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	prod, err := c.classifyProducts(ctx, key, dryRun)
	if err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	return []Result{kw, cat, prod}, nil
}
