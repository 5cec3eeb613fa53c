package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shareview/analytics/internal/repos"
	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/types"
)

type InsightsHandler struct {
	insights repos.AIInsightRepo
}

func NewInsightsHandler(insights repos.AIInsightRepo) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

// List returns all generated insights for a retailer and month,
// regardless of review status.
func (ih *InsightsHandler) List(c *gin.Context) {
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

	rows, err := ih.insights.ListForPeriod(c.Request.Context(), nil, retailerID, period.RangeStart, period.RangeEnd)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "insights_query_failed", err)
		return
	}
	RespondOK(c, gin.H{"insights": rows})
}

type reviewInsightRequest struct {
	Approved   bool      `json:"approved"`
	ReviewerID uuid.UUID `json:"reviewer_id" binding:"required"`
	Notes      string    `json:"notes"`
}

// Review settles a pending insight as approved or rejected.
func (ih *InsightsHandler) Review(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_insight_id", err)
		return
	}
	var req reviewInsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	insight, err := ih.insights.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "insight_lookup_failed", err)
		return
	}
	if insight == nil {
		RespondError(c, http.StatusNotFound, "insight_not_found", errors.New("insight not found"))
		return
	}
	if insight.Status != types.InsightStatusPending {
		RespondError(c, http.StatusConflict, "insight_already_reviewed", errors.New("only pending insights can be reviewed"))
		return
	}

	if err := ih.insights.Review(c.Request.Context(), nil, id, req.Approved, req.ReviewerID, req.Notes); err != nil {
		RespondError(c, http.StatusInternalServerError, "insight_review_failed", err)
		return
	}

	updated, err := ih.insights.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "insight_lookup_failed", err)
		return
	}
	RespondOK(c, gin.H{"insight": updated})
}
