package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	goflags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/shareview/analytics/internal/classifier"
	"github.com/shareview/analytics/internal/db"
	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/metrics"
	"github.com/shareview/analytics/internal/pipeline"
	"github.com/shareview/analytics/internal/repos"
	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/warehouse"
)

type options struct {
	Retailer string `long:"retailer" description:"Limit the run to one retailer ID"`
	Month    string `long:"month" description:"Limit the run to one month (YYYY-MM)"`
	DryRun   bool   `long:"dry-run" description:"Run all stages without writing"`
	Force    bool   `long:"force" description:"Regenerate even when not stale"`
	Schedule string `long:"schedule" description:"Cron expression; keeps the process alive and runs on schedule"`
}

func main() {
	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var opts options
	if _, err := goflags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	ctx := context.Background()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	defer postgresService.Close()
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	warehouseStore, err := warehouse.NewStore(ctx, log)
	if err != nil {
		log.Error("Warehouse init failed", "error", err)
		os.Exit(1)
	}
	defer warehouseStore.Close()

	retailerRepo := repos.NewRetailerRepo(thePG, log)
	keywordsRepo := repos.NewKeywordsSnapshotRepo(thePG, log)
	categoryRepo := repos.NewCategorySnapshotRepo(thePG, log)
	categoryNodeRepo := repos.NewCategoryNodeSnapshotRepo(thePG, log)
	productRepo := repos.NewProductSnapshotRepo(thePG, log)
	auctionRepo := repos.NewAuctionSnapshotRepo(thePG, log)
	coverageRepo := repos.NewCoverageSnapshotRepo(thePG, log)
	metricRepo := repos.NewDomainMetricRepo(thePG, log)

	snapshotGenerator := snapshots.NewGenerator(
		warehouseStore,
		retailerRepo,
		keywordsRepo,
		categoryRepo,
		categoryNodeRepo,
		productRepo,
		auctionRepo,
		coverageRepo,
		log,
	)
	snapshotClassifier := classifier.NewClassifier(warehouseStore, keywordsRepo, categoryRepo, productRepo, log)
	metricsGenerator := metrics.NewGenerator(
		retailerRepo,
		keywordsRepo,
		categoryRepo,
		productRepo,
		auctionRepo,
		coverageRepo,
		metricRepo,
		log,
	)

	pipe := pipeline.New(snapshotGenerator, snapshotClassifier, metricsGenerator, log)
	runOpts := pipeline.Options{
		Retailer: opts.Retailer,
		Month:    opts.Month,
		DryRun:   opts.DryRun,
		Force:    opts.Force,
	}

	if opts.Schedule == "" {
		if _, err := pipe.Run(ctx, runOpts); err != nil {
			log.Error("Pipeline run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(opts.Schedule, func() {
		if _, err := pipe.Run(ctx, runOpts); err != nil {
			log.Error("Scheduled pipeline run failed", "error", err)
		}
	}); err != nil {
		log.Error("Invalid cron schedule", "schedule", opts.Schedule, "error", err)
		os.Exit(1)
	}
	c.Start()
	log.Info("Pipeline scheduler started", "schedule", opts.Schedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopCtx := c.Stop()
	<-stopCtx.Done()
	log.Info("Pipeline scheduler stopped")
}
