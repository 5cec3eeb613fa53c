// Package reports freezes a retailer's dashboard for a period into report
// rows. Captured payloads are copies taken at creation time; later snapshot
// regeneration never changes an existing report.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/repos"
	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/types"
)

// Tabs and metrics a report falls back to when the retailer has no explicit
// visibility configuration.
var (
	DefaultTabs    = []string{"overview", "keywords", "categories", "products", "auctions"}
	DefaultMetrics = []string{"gmv", "conversions", "cvr", "impressions", "ctr", "clicks", "roi", "validation_rate"}
)

// VisibilityConfig is the frozen copy of what the retailer could see when
// the report was created.
type VisibilityConfig struct {
	VisibleTabs     []string        `json:"visible_tabs"`
	VisibleMetrics  []string        `json:"visible_metrics"`
	KeywordFilters  []string        `json:"keyword_filters"`
	FeaturesEnabled map[string]bool `json:"features_enabled"`
}

type CreateParams struct {
	RetailerID  string
	Month       string
	Title       string
	Description string
	Domains     []string
	AutoApprove bool
	CreatedBy   *uuid.UUID
}

type Service struct {
	db         *gorm.DB
	retailers  repos.RetailerRepo
	keywords   repos.KeywordsSnapshotRepo
	categories repos.CategorySnapshotRepo
	products   repos.ProductSnapshotRepo
	auctions   repos.AuctionSnapshotRepo
	coverage   repos.CoverageSnapshotRepo
	metrics    repos.DomainMetricRepo
	insights   repos.AIInsightRepo
	reports    repos.ReportRepo
	log        *logger.Logger
}

func NewService(
	db *gorm.DB,
	retailers repos.RetailerRepo,
	keywords repos.KeywordsSnapshotRepo,
	categories repos.CategorySnapshotRepo,
	products repos.ProductSnapshotRepo,
	auctions repos.AuctionSnapshotRepo,
	coverage repos.CoverageSnapshotRepo,
	metrics repos.DomainMetricRepo,
	insights repos.AIInsightRepo,
	reports repos.ReportRepo,
	baseLog *logger.Logger,
) *Service {
	return &Service{
		db:         db,
		retailers:  retailers,
		keywords:   keywords,
		categories: categories,
		products:   products,
		auctions:   auctions,
		coverage:   coverage,
		metrics:    metrics,
		insights:   insights,
		reports:    reports,
		log:        baseLog.With("service", "Reports"),
	}
}

// captureVisibility intersects the retailer's live tab config with the
// domains chosen for this report. A tab appears only when it is both enabled
// for the retailer and selected by the creator; metrics, filters and feature
// flags carry over from the live config verbatim.
func captureVisibility(retailer *types.RetailerMetadata, selectedDomains []string) VisibilityConfig {
	cfg := VisibilityConfig{
		VisibleTabs:     DefaultTabs,
		VisibleMetrics:  DefaultMetrics,
		KeywordFilters:  []string{},
		FeaturesEnabled: map[string]bool{},
	}

	if retailer == nil {
		if selectedDomains != nil {
			cfg.VisibleTabs = selectedDomains
		}
		return cfg
	}

	liveTabs := DefaultTabs
	if tabs := decodeStrings(retailer.VisibleTabs); tabs != nil {
		liveTabs = tabs
	}
	if metrics := decodeStrings(retailer.VisibleMetrics); metrics != nil {
		cfg.VisibleMetrics = metrics
	}
	if filters := decodeStrings(retailer.KeywordFilters); filters != nil {
		cfg.KeywordFilters = filters
	}
	if len(retailer.FeaturesEnabled) > 0 {
		var features map[string]bool
		if err := json.Unmarshal(retailer.FeaturesEnabled, &features); err == nil {
			cfg.FeaturesEnabled = features
		}
	}

	if selectedDomains == nil {
		cfg.VisibleTabs = liveTabs
		return cfg
	}
	selected := make(map[string]bool, len(selectedDomains))
	for _, d := range selectedDomains {
		selected[d] = true
	}
	visible := []string{}
	for _, tab := range liveTabs {
		if selected[tab] {
			visible = append(visible, tab)
		}
	}
	cfg.VisibleTabs = visible
	return cfg
}

func decodeStrings(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// capturedDomain is the frozen payload for one report domain.
type capturedDomain struct {
	performanceTable  []byte
	domainMetricsData []byte
}

// captureDomain freezes the active domain metrics and the domain's snapshot
// row. Metric cards collapse into one metricCards array; every other
// component keys by its type. Overview has no snapshot table of its own.
func (s *Service) captureDomain(ctx context.Context, tx *gorm.DB, retailerID, domain string, period snapshots.Period) (capturedDomain, error) {
	var out capturedDomain

	components, err := s.metrics.ListByPage(ctx, tx, retailerID, domain, period.RangeStart, period.RangeEnd)
	if err != nil {
		return out, err
	}
	if len(components) > 0 {
		grouped := map[string]interface{}{}
		var metricCards []json.RawMessage
		for _, c := range components {
			if c.ComponentType == types.ComponentMetricCard {
				metricCards = append(metricCards, json.RawMessage(c.ComponentData))
				continue
			}
			grouped[c.ComponentType] = json.RawMessage(c.ComponentData)
		}
		if metricCards != nil {
			grouped["metricCards"] = metricCards
		}
		raw, err := json.Marshal(grouped)
		if err != nil {
			return out, fmt.Errorf("marshal %s metrics data: %w", domain, err)
		}
		out.domainMetricsData = raw
	}

	var table interface{}
	switch domain {
	case "keywords":
		snap, err := s.keywords.GetByPeriod(ctx, tx, retailerID, period.RangeStart, period.RangeEnd)
		if err != nil {
			return out, err
		}
		if snap != nil {
			table = snap
		}
	case "categories":
		snap, err := s.categories.GetByPeriod(ctx, tx, retailerID, period.RangeStart, period.RangeEnd)
		if err != nil {
			return out, err
		}
		if snap != nil {
			table = snap
		}
	case "products":
		snap, err := s.products.GetByPeriod(ctx, tx, retailerID, period.RangeStart, period.RangeEnd)
		if err != nil {
			return out, err
		}
		if snap != nil {
			table = snap
		}
	case "auctions":
		snap, err := s.auctions.GetByPeriod(ctx, tx, retailerID, period.RangeStart, period.RangeEnd)
		if err != nil {
			return out, err
		}
		if snap != nil {
			table = snap
		}
	case "coverage":
		snap, err := s.coverage.GetByPeriod(ctx, tx, retailerID, period.RangeStart, period.RangeEnd)
		if err != nil {
			return out, err
		}
		if snap != nil {
			table = snap
		}
	}
	if table != nil {
		raw, err := json.Marshal(table)
		if err != nil {
			return out, fmt.Errorf("marshal %s performance table: %w", domain, err)
		}
		out.performanceTable = raw
	}

	return out, nil
}

// insightTypeForDomain maps a report domain to the insight narrative that
// belongs on it. Domains without a matching insight carry none.
func insightTypeForDomain(domain string) string {
	switch domain {
	case "overview", "keywords":
		return types.InsightTypePanel
	case "categories":
		return types.InsightTypeMarketAnalysis
	case "products":
		return types.InsightTypeRecommendation
	default:
		return ""
	}
}

// CreateReport captures a report and its domain payloads in one transaction.
// Auto-approve publishes immediately, approving and activating the linked
// insights; otherwise the report waits in pending_approval.
func (s *Service) CreateReport(ctx context.Context, params CreateParams) (*types.Report, error) {
	period, err := snapshots.ParseMonth(params.Month)
	if err != nil {
		return nil, err
	}
	domains := params.Domains
	if len(domains) == 0 {
		domains = DefaultTabs
	}

	retailer, err := s.retailers.GetByRetailerID(ctx, nil, params.RetailerID)
	if err != nil {
		return nil, err
	}
	if retailer == nil {
		return nil, fmt.Errorf("retailer %s not found", params.RetailerID)
	}

	visibility := captureVisibility(retailer, domains)
	visibilityJSON, err := json.Marshal(visibility)
	if err != nil {
		return nil, fmt.Errorf("marshal visibility config: %w", err)
	}

	var report *types.Report
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report, err = s.reports.Create(ctx, tx, &types.Report{
			RetailerID:       params.RetailerID,
			Title:            params.Title,
			Description:      params.Description,
			ReportType:       "manual",
			PeriodType:       types.PeriodTypeMonth,
			PeriodStart:      period.RangeStart,
			PeriodEnd:        period.RangeEnd,
			Status:           types.ReportStatusDraft,
			IsActive:         false,
			AutoApprove:      params.AutoApprove,
			VisibilityConfig: visibilityJSON,
			CreatedBy:        params.CreatedBy,
		})
		if err != nil {
			return err
		}

		insightRows, err := s.insights.ListForPeriod(ctx, tx, params.RetailerID, period.RangeStart, period.RangeEnd)
		if err != nil {
			return err
		}
		insightByType := map[string]*types.AIInsight{}
		for _, insight := range insightRows {
			insightByType[insight.InsightType] = insight
		}

		var domainRows []*types.ReportDomain
		var linkedIDs []uuid.UUID
		for i, domain := range visibility.VisibleTabs {
			captured, err := s.captureDomain(ctx, tx, params.RetailerID, domain, period)
			if err != nil {
				return fmt.Errorf("capture %s domain: %w", domain, err)
			}
			row := &types.ReportDomain{
				ReportID:          report.ID,
				Domain:            domain,
				PerformanceTable:  captured.performanceTable,
				DomainMetricsData: captured.domainMetricsData,
				SortOrder:         i,
			}
			if insight, ok := insightByType[insightTypeForDomain(domain)]; ok {
				id := insight.ID
				row.AIInsightID = &id
				linkedIDs = append(linkedIDs, id)
			}
			domainRows = append(domainRows, row)
		}
		if err := s.reports.CreateDomains(ctx, tx, domainRows); err != nil {
			return err
		}

		if params.AutoApprove {
			for _, id := range linkedIDs {
				reviewer := uuid.Nil
				if params.CreatedBy != nil {
					reviewer = *params.CreatedBy
				}
				if err := s.insights.Review(ctx, tx, id, true, reviewer, "auto-approved at report creation"); err != nil {
					return fmt.Errorf("auto-approve insight %s: %w", id, err)
				}
			}
			if len(linkedIDs) > 0 {
				if err := s.insights.Publish(ctx, tx, linkedIDs, params.CreatedBy); err != nil {
					return err
				}
			}
			if err := s.reports.UpdateStatus(ctx, tx, report.ID, types.ReportStatusPublished, params.CreatedBy); err != nil {
				return err
			}
			report.Status = types.ReportStatusPublished
			report.IsActive = true
			return nil
		}

		if err := s.reports.UpdateStatus(ctx, tx, report.ID, types.ReportStatusPendingApproval, nil); err != nil {
			return err
		}
		report.Status = types.ReportStatusPendingApproval
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Created report",
		"report_id", report.ID, "retailer", params.RetailerID, "month", params.Month,
		"domains", len(visibility.VisibleTabs), "status", report.Status)
	return report, nil
}

// PublishReport publishes a pending report. Every insight linked from the
// report's domains must already be approved; publication activates them and
// stamps the report.
func (s *Service) PublishReport(ctx context.Context, reportID uuid.UUID, publishedBy *uuid.UUID) (*types.Report, error) {
	report, err := s.reports.GetByID(ctx, nil, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("report %s not found", reportID)
	}
	if report.Status == types.ReportStatusPublished {
		return nil, fmt.Errorf("report %s is already published", reportID)
	}

	domains, err := s.reports.GetDomains(ctx, nil, reportID)
	if err != nil {
		return nil, err
	}
	if len(domains) == 0 {
		return nil, fmt.Errorf("report %s has no domains configured", reportID)
	}

	var linkedIDs []uuid.UUID
	for _, domain := range domains {
		if domain.AIInsightID == nil {
			continue
		}
		insight, err := s.insights.GetByID(ctx, nil, *domain.AIInsightID)
		if err != nil {
			return nil, err
		}
		if insight == nil {
			return nil, fmt.Errorf("insight %s linked from domain %s not found", domain.AIInsightID, domain.Domain)
		}
		if insight.Status != types.InsightStatusApproved {
			return nil, fmt.Errorf("cannot publish: %s insight for domain %s is %s, not approved",
				insight.InsightType, domain.Domain, insight.Status)
		}
		linkedIDs = append(linkedIDs, insight.ID)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(linkedIDs) > 0 {
			if err := s.insights.Publish(ctx, tx, linkedIDs, publishedBy); err != nil {
				return err
			}
		}
		return s.reports.UpdateStatus(ctx, tx, reportID, types.ReportStatusPublished, publishedBy)
	})
	if err != nil {
		return nil, err
	}

	report.Status = types.ReportStatusPublished
	report.IsActive = true
	report.PublishedBy = publishedBy
	now := time.Now()
	report.PublishedAt = &now

	s.log.Info("Published report", "report_id", reportID, "insights", len(linkedIDs))
	return report, nil
}

// GetReport returns a report with its domain sections.
func (s *Service) GetReport(ctx context.Context, reportID uuid.UUID) (*types.Report, []*types.ReportDomain, error) {
	report, err := s.reports.GetByID(ctx, nil, reportID)
	if err != nil {
		return nil, nil, err
	}
	if report == nil {
		return nil, nil, nil
	}
	domains, err := s.reports.GetDomains(ctx, nil, reportID)
	if err != nil {
		return nil, nil, err
	}
	return report, domains, nil
}
