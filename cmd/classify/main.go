package main

import (
	"context"
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/shareview/analytics/internal/classifier"
	"github.com/shareview/analytics/internal/db"
	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/repos"
	"github.com/shareview/analytics/internal/warehouse"
)

type options struct {
	Retailer string `long:"retailer" description:"Limit the run to one retailer ID"`
	Month    string `long:"month" description:"Limit the run to one month (YYYY-MM)"`
	DryRun   bool   `long:"dry-run" description:"Compute tier counts without writing them"`
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

	keywordsRepo := repos.NewKeywordsSnapshotRepo(thePG, log)
	categoryRepo := repos.NewCategorySnapshotRepo(thePG, log)
	productRepo := repos.NewProductSnapshotRepo(thePG, log)

	cls := classifier.NewClassifier(warehouseStore, keywordsRepo, categoryRepo, productRepo, log)

	results, err := cls.Run(ctx, classifier.Options{
		Retailer: opts.Retailer,
		Month:    opts.Month,
		DryRun:   opts.DryRun,
	})
	if err != nil {
		log.Error("Snapshot classification failed", "error", err)
		os.Exit(1)
	}
	log.Info("Snapshot classification finished", "results", len(results))
}
