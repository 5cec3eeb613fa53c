// Package pipeline chains the batch stages into one run: snapshot
// generation, classification, then domain metrics. Insights stay out of the
// automated chain because every generated insight needs human review before
// it surfaces anywhere.
package pipeline

import (
	"context"
	"fmt"

	"github.com/shareview/analytics/internal/classifier"
	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/metrics"
	"github.com/shareview/analytics/internal/snapshots"
)

type Options struct {
	Retailer string
	Month    string
	DryRun   bool
	Force    bool
}

// Summary counts the work each stage performed in one run.
type Summary struct {
	SnapshotResults   int
	ClassifierResults int
	MetricPeriods     int
}

type Pipeline struct {
	snapshots  *snapshots.Generator
	classifier *classifier.Classifier
	metrics    *metrics.Generator
	log        *logger.Logger
}

func New(snap *snapshots.Generator, cls *classifier.Classifier, met *metrics.Generator, baseLog *logger.Logger) *Pipeline {
	return &Pipeline{
		snapshots:  snap,
		classifier: cls,
		metrics:    met,
		log:        baseLog.With("service", "Pipeline"),
	}
}

// Run executes the stages in dependency order. A stage failure aborts the
// run: later stages read what earlier stages wrote, so continuing would
// materialize from stale rows.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Summary, error) {
	p.log.Info("Starting pipeline run", "retailer", opts.Retailer, "month", opts.Month, "dry_run", opts.DryRun, "force", opts.Force)

	snapResults, err := p.snapshots.Run(ctx, snapshots.Options{
		Retailer: opts.Retailer,
		Month:    opts.Month,
		DryRun:   opts.DryRun,
		Force:    opts.Force,
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot stage: %w", err)
	}

	classResults, err := p.classifier.Run(ctx, classifier.Options{
		Retailer: opts.Retailer,
		Month:    opts.Month,
		DryRun:   opts.DryRun,
	})
	if err != nil {
		return nil, fmt.Errorf("classification stage: %w", err)
	}

	metricResults, err := p.metrics.Run(ctx, metrics.Options{
		Retailer: opts.Retailer,
		Month:    opts.Month,
		DryRun:   opts.DryRun,
		Force:    opts.Force,
	})
	if err != nil {
		return nil, fmt.Errorf("metrics stage: %w", err)
	}

	summary := &Summary{
		SnapshotResults:   len(snapResults),
		ClassifierResults: len(classResults),
		MetricPeriods:     len(metricResults),
	}
	p.log.Info("Pipeline run complete",
		"snapshots", summary.SnapshotResults,
		"classified", summary.ClassifierResults,
		"metric_periods", summary.MetricPeriods)
	return summary, nil
}
