package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RetailerMetadata is the live per-retailer configuration. Snapshot generation
// only runs for retailers with SnapshotEnabled set; the visibility fields are
// the live config that report creation freezes.
type RetailerMetadata struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RetailerID      string         `gorm:"column:retailer_id;not null;uniqueIndex" json:"retailer_id"`
	RetailerName    string         `gorm:"column:retailer_name" json:"retailer_name"`
	SnapshotEnabled bool           `gorm:"column:snapshot_enabled;not null;default:false" json:"snapshot_enabled"`
	DetailLevel     string         `gorm:"column:snapshot_detail_level;not null;default:'summary'" json:"snapshot_detail_level"`
	VisibleTabs     datatypes.JSON `gorm:"column:visible_tabs;type:jsonb" json:"visible_tabs"`
	VisibleMetrics  datatypes.JSON `gorm:"column:visible_metrics;type:jsonb" json:"visible_metrics"`
	KeywordFilters  datatypes.JSON `gorm:"column:keyword_filters;type:jsonb" json:"keyword_filters"`
	FeaturesEnabled datatypes.JSON `gorm:"column:features_enabled;type:jsonb" json:"features_enabled"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (RetailerMetadata) TableName() string {
	return "retailer_metadata"
}
