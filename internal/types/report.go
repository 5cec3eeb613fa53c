package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ReportStatusDraft           = "draft"
	ReportStatusPendingApproval = "pending_approval"
	ReportStatusPublished       = "published"
)

// Report is a point-in-time capture of a retailer's dashboard for a period.
// VisibilityConfig freezes which tabs, metrics, filters and features were
// visible when the report was created; the per-domain payloads live in
// ReportDomain rows.
type Report struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RetailerID  string    `gorm:"column:retailer_id;not null;index" json:"retailer_id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	ReportType  string    `gorm:"column:report_type;not null;default:'manual'" json:"report_type"`

	PeriodType  string    `gorm:"column:period_type;not null;default:'month'" json:"period_type"`
	PeriodStart time.Time `gorm:"column:period_start;type:date;not null" json:"period_start"`
	PeriodEnd   time.Time `gorm:"column:period_end;type:date;not null" json:"period_end"`

	Status      string `gorm:"column:status;not null;default:'draft'" json:"status"`
	IsActive    bool   `gorm:"column:is_active;not null;default:true" json:"is_active"`
	AutoApprove bool   `gorm:"column:auto_approve;not null;default:false" json:"auto_approve"`

	VisibilityConfig datatypes.JSON `gorm:"column:visibility_config;type:jsonb" json:"visibility_config"`

	CreatedBy   *uuid.UUID `gorm:"column:created_by;type:uuid" json:"created_by"`
	PublishedBy *uuid.UUID `gorm:"column:published_by;type:uuid" json:"published_by"`
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Report) TableName() string {
	return "reports"
}

// ReportDomain is one domain section of a report. PerformanceTable and
// DomainMetricsData are frozen copies taken at creation time and never
// recomputed afterwards.
type ReportDomain struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReportID uuid.UUID `gorm:"column:report_id;type:uuid;not null;index" json:"report_id"`
	Domain   string    `gorm:"column:domain;not null" json:"domain"`

	PerformanceTable  datatypes.JSON `gorm:"column:performance_table;type:jsonb" json:"performance_table"`
	DomainMetricsData datatypes.JSON `gorm:"column:domain_metrics_data;type:jsonb" json:"domain_metrics_data"`
	AIInsightID       *uuid.UUID     `gorm:"column:ai_insight_id;type:uuid" json:"ai_insight_id"`

	SortOrder int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ReportDomain) TableName() string {
	return "report_domains"
}
