package main

import (
	"context"
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/shareview/analytics/internal/db"
	"github.com/shareview/analytics/internal/insights"
	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/repos"
)

type options struct {
	Retailer string `long:"retailer" description:"Limit the run to one retailer ID"`
	Month    string `long:"month" description:"Limit the run to one month (YYYY-MM)"`
	Style    string `long:"style" description:"Narrative style: standard, concise, exec-summary or detailed" default:"standard"`
	DryRun   bool   `long:"dry-run" description:"Generate insight text without writing it"`
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

	retailerRepo := repos.NewRetailerRepo(thePG, log)
	keywordsRepo := repos.NewKeywordsSnapshotRepo(thePG, log)
	categoryRepo := repos.NewCategorySnapshotRepo(thePG, log)
	productRepo := repos.NewProductSnapshotRepo(thePG, log)
	insightRepo := repos.NewAIInsightRepo(thePG, log)
	jobRepo := repos.NewGenerationJobRepo(thePG, log)

	generator := insights.NewGenerator(
		retailerRepo,
		keywordsRepo,
		categoryRepo,
		productRepo,
		insightRepo,
		jobRepo,
		log,
	)

	results, err := generator.Run(ctx, insights.Options{
		Retailer: opts.Retailer,
		Month:    opts.Month,
		Style:    opts.Style,
		DryRun:   opts.DryRun,
	})
	if err != nil {
		log.Error("Insight generation failed", "error", err)
		os.Exit(1)
	}
	log.Info("Insight generation finished", "periods", len(results))
}
