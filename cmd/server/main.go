package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/shareview/analytics/internal/db"
	"github.com/shareview/analytics/internal/handlers"
	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/repos"
	"github.com/shareview/analytics/internal/reports"
	"github.com/shareview/analytics/internal/server"
	"github.com/shareview/analytics/internal/utils"
)

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

	// Repos
	log.Info("Setting up repos from main...")
	retailerRepo := repos.NewRetailerRepo(thePG, log)
	keywordsRepo := repos.NewKeywordsSnapshotRepo(thePG, log)
	categoryRepo := repos.NewCategorySnapshotRepo(thePG, log)
	productRepo := repos.NewProductSnapshotRepo(thePG, log)
	auctionRepo := repos.NewAuctionSnapshotRepo(thePG, log)
	coverageRepo := repos.NewCoverageSnapshotRepo(thePG, log)
	metricRepo := repos.NewDomainMetricRepo(thePG, log)
	insightRepo := repos.NewAIInsightRepo(thePG, log)
	jobRepo := repos.NewGenerationJobRepo(thePG, log)
	reportRepo := repos.NewReportRepo(thePG, log)

	// Services
	log.Info("Setting up services from main...")
	reportService := reports.NewService(
		thePG,
		retailerRepo,
		keywordsRepo,
		categoryRepo,
		productRepo,
		auctionRepo,
		coverageRepo,
		metricRepo,
		insightRepo,
		reportRepo,
		log,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	metricsHandler := handlers.NewMetricsHandler(metricRepo)
	insightsHandler := handlers.NewInsightsHandler(insightRepo)
	reportsHandler := handlers.NewReportsHandler(reportService)
	jobsHandler := handlers.NewJobsHandler(jobRepo)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		MetricsHandler:  metricsHandler,
		InsightsHandler: insightsHandler,
		ReportsHandler:  reportsHandler,
		JobsHandler:     jobsHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
