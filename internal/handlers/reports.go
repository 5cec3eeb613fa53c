package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shareview/analytics/internal/reports"
)

type ReportsHandler struct {
	reports *reports.Service
}

func NewReportsHandler(service *reports.Service) *ReportsHandler {
	return &ReportsHandler{reports: service}
}

type createReportRequest struct {
	RetailerID  string     `json:"retailer_id" binding:"required"`
	Month       string     `json:"month" binding:"required"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Domains     []string   `json:"domains"`
	AutoApprove bool       `json:"auto_approve"`
	CreatedBy   *uuid.UUID `json:"created_by"`
}

// Create materializes a frozen report for one retailer month.
func (rh *ReportsHandler) Create(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	report, err := rh.reports.CreateReport(c.Request.Context(), reports.CreateParams{
		RetailerID:  req.RetailerID,
		Month:       req.Month,
		Title:       req.Title,
		Description: req.Description,
		Domains:     req.Domains,
		AutoApprove: req.AutoApprove,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		RespondError(c, reportErrorStatus(err), "report_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": report})
}

type publishReportRequest struct {
	PublishedBy *uuid.UUID `json:"published_by"`
}

// Publish moves a pending report live once every linked insight is approved.
func (rh *ReportsHandler) Publish(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_report_id", err)
		return
	}
	// Body is optional; a bare POST publishes without attribution.
	var req publishReportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	report, err := rh.reports.PublishReport(c.Request.Context(), id, req.PublishedBy)
	if err != nil {
		RespondError(c, reportErrorStatus(err), "report_publish_failed", err)
		return
	}
	RespondOK(c, gin.H{"report": report})
}

// Get returns a report together with its frozen per-domain payloads.
func (rh *ReportsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_report_id", err)
		return
	}

	report, domains, err := rh.reports.GetReport(c.Request.Context(), id)
	if err != nil {
		RespondError(c, reportErrorStatus(err), "report_lookup_failed", err)
		return
	}
	if report == nil {
		RespondError(c, http.StatusNotFound, "report_not_found", errors.New("report not found"))
		return
	}
	RespondOK(c, gin.H{"report": report, "domains": domains})
}

// reportErrorStatus maps service errors onto HTTP statuses by message
// shape. The service layer does not expose sentinel errors.
func reportErrorStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "invalid month"):
		return http.StatusBadRequest
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "already published"), strings.Contains(msg, "not approved"):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
