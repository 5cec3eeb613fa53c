package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shareview/analytics/internal/handlers"
)

type RouterConfig struct {
	MetricsHandler  *handlers.MetricsHandler
	InsightsHandler *handlers.InsightsHandler
	ReportsHandler  *handlers.ReportsHandler
	JobsHandler     *handlers.JobsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Materialized metrics
		api.GET("/metrics", cfg.MetricsHandler.List)
		// Insights and review workflow
		api.GET("/insights", cfg.InsightsHandler.List)
		api.POST("/insights/:id/review", cfg.InsightsHandler.Review)
		// Reports
		api.POST("/reports", cfg.ReportsHandler.Create)
		api.GET("/reports/:id", cfg.ReportsHandler.Get)
		api.POST("/reports/:id/publish", cfg.ReportsHandler.Publish)
		// Generation job polling
		api.GET("/jobs/:id", cfg.JobsHandler.Get)
	}

	return router
}
