package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Component types produced by the domain metrics generator. These are the
// only shapes ComponentData may hold; see internal/metrics for the typed
// payloads.
const (
	ComponentPageHeadline   = "page_headline"
	ComponentMetricCard     = "metric_card"
	ComponentQuickStats     = "quick_stats"
	ComponentContextualInfo = "contextual_info"
)

// DomainMetric is one display-ready component for a retailer page and period.
// Recomputation upserts on the (retailer, page, tab, period, component type)
// key; CalculatedAt is the watermark the staleness check compares against the
// snapshot's LastUpdated.
type DomainMetric struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RetailerID string    `gorm:"column:retailer_id;not null;uniqueIndex:idx_domain_metrics_key" json:"retailer_id"`
	PageType   string    `gorm:"column:page_type;not null;uniqueIndex:idx_domain_metrics_key" json:"page_type"`
	TabName    string    `gorm:"column:tab_name;not null;uniqueIndex:idx_domain_metrics_key" json:"tab_name"`
	PeriodType string    `gorm:"column:period_type;not null;default:'month'" json:"period_type"`
	PeriodStart time.Time `gorm:"column:period_start;type:date;not null;uniqueIndex:idx_domain_metrics_key" json:"period_start"`
	PeriodEnd   time.Time `gorm:"column:period_end;type:date;not null;uniqueIndex:idx_domain_metrics_key" json:"period_end"`

	ComponentType string         `gorm:"column:component_type;not null;uniqueIndex:idx_domain_metrics_key" json:"component_type"`
	ComponentData datatypes.JSON `gorm:"column:component_data;type:jsonb;not null" json:"component_data"`

	SourceSnapshotID  *uuid.UUID `gorm:"column:source_snapshot_id;type:uuid" json:"source_snapshot_id"`
	CalculationMethod string     `gorm:"column:calculation_method;not null;default:'algorithmic'" json:"calculation_method"`
	IsActive          bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CalculatedAt time.Time `gorm:"column:calculated_at;not null;default:now()" json:"calculated_at"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (DomainMetric) TableName() string {
	return "domain_metrics"
}
