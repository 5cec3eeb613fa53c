package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shareview/analytics/internal/repos"
	"github.com/shareview/analytics/internal/snapshots"
)

type MetricsHandler struct {
	metrics repos.DomainMetricRepo
}

func NewMetricsHandler(metrics repos.DomainMetricRepo) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// List returns the materialized metric components for a retailer and
// month, optionally filtered to a single page.
func (mh *MetricsHandler) List(c *gin.Context) {
	retailerID := c.Query("retailer")
	if retailerID == "" {
		RespondError(c, http.StatusBadRequest, "missing_retailer", errors.New("retailer query parameter is required"))
		return
	}
	period, err := snapshots.ParseMonth(c.Query("period"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_period", err)
		return
	}

	page := c.Query("page")
	if page != "" {
		rows, err := mh.metrics.ListByPage(c.Request.Context(), nil, retailerID, page, period.RangeStart, period.RangeEnd)
		if err != nil {
			RespondError(c, http.StatusInternalServerError, "metrics_query_failed", err)
			return
		}
		RespondOK(c, gin.H{"metrics": rows})
		return
	}

	rows, err := mh.metrics.ListForPeriod(c.Request.Context(), nil, retailerID, period.RangeStart, period.RangeEnd)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "metrics_query_failed", err)
		return
	}
	RespondOK(c, gin.H{"metrics": rows})
}
