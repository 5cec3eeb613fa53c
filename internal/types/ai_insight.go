package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Insight lifecycle. Regeneration resets an insight to pending and clears
// any approval and publish metadata already on the row.
const (
	InsightStatusDraft    = "draft"
	InsightStatusPending  = "pending"
	InsightStatusApproved = "approved"
	InsightStatusRejected = "rejected"
	InsightStatusArchived = "archived"
)

const (
	InsightTypePanel          = "insight_panel"
	InsightTypeMarketAnalysis = "market_analysis"
	InsightTypeRecommendation = "recommendation"
)

// AIInsight is one generated narrative component for a retailer period.
// Payloads are template-derived today, so ModelName stays "placeholder" and
// ConfidenceScore is a fixed 0.5 until a real model is wired in.
type AIInsight struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RetailerID  string    `gorm:"column:retailer_id;not null;uniqueIndex:idx_ai_insights_key" json:"retailer_id"`
	PageType    string    `gorm:"column:page_type;not null;uniqueIndex:idx_ai_insights_key" json:"page_type"`
	TabName     string    `gorm:"column:tab_name;not null;uniqueIndex:idx_ai_insights_key" json:"tab_name"`
	PeriodType  string    `gorm:"column:period_type;not null;default:'month'" json:"period_type"`
	PeriodStart time.Time `gorm:"column:period_start;type:date;not null;uniqueIndex:idx_ai_insights_key" json:"period_start"`
	PeriodEnd   time.Time `gorm:"column:period_end;type:date;not null;uniqueIndex:idx_ai_insights_key" json:"period_end"`

	InsightType string         `gorm:"column:insight_type;not null;uniqueIndex:idx_ai_insights_key" json:"insight_type"`
	InsightData datatypes.JSON `gorm:"column:insight_data;type:jsonb;not null" json:"insight_data"`

	ModelName       string  `gorm:"column:model_name;not null" json:"model_name"`
	ModelVersion    string  `gorm:"column:model_version;not null" json:"model_version"`
	ConfidenceScore float64 `gorm:"column:confidence_score;not null" json:"confidence_score"`
	PromptHash      string  `gorm:"column:prompt_hash" json:"prompt_hash"`

	Status   string `gorm:"column:status;not null;default:'pending'" json:"status"`
	IsActive bool   `gorm:"column:is_active;not null;default:false" json:"is_active"`

	CreatedBy   *uuid.UUID `gorm:"column:created_by;type:uuid" json:"created_by"`
	ApprovedBy  *uuid.UUID `gorm:"column:approved_by;type:uuid" json:"approved_by"`
	ApprovedAt  *time.Time `gorm:"column:approved_at" json:"approved_at"`
	PublishedBy *uuid.UUID `gorm:"column:published_by;type:uuid" json:"published_by"`
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at"`
	ReviewNotes string     `gorm:"column:review_notes" json:"review_notes"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (AIInsight) TableName() string {
	return "ai_insights"
}

const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// InsightGenerationJob tracks one insights run so callers can poll progress.
type InsightGenerationJob struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RetailerID  string     `gorm:"column:retailer_id;not null;index" json:"retailer_id"`
	PeriodType  string     `gorm:"column:period_type;not null;default:'month'" json:"period_type"`
	PeriodStart time.Time  `gorm:"column:period_start;type:date;not null" json:"period_start"`
	PeriodEnd   time.Time  `gorm:"column:period_end;type:date;not null" json:"period_end"`
	Status      string     `gorm:"column:status;not null;default:'queued'" json:"status"`
	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`
	ErrorMessage string    `gorm:"column:error_message" json:"error_message"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (InsightGenerationJob) TableName() string {
	return "insights_generation_jobs"
}
