package repos

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/types"
)

type DomainMetricRepo interface {
	UpsertBatch(ctx context.Context, tx *gorm.DB, metrics []*types.DomainMetric) error
	MaxCalculatedAt(ctx context.Context, tx *gorm.DB, retailerID string, periodStart, periodEnd time.Time) (*time.Time, error)
	ListForPeriod(ctx context.Context, tx *gorm.DB, retailerID string, periodStart, periodEnd time.Time) ([]*types.DomainMetric, error)
	ListByPage(ctx context.Context, tx *gorm.DB, retailerID, pageType string, periodStart, periodEnd time.Time) ([]*types.DomainMetric, error)
}

type domainMetricRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDomainMetricRepo(db *gorm.DB, baseLog *logger.Logger) DomainMetricRepo {
	return &domainMetricRepo{db: db, log: baseLog.With("repo", "DomainMetricRepo")}
}

// UpsertBatch writes every component for a period in one transaction so a
// partial recomputation never leaves a mix of old and new rows. Conflicts on
// the component key replace in place and advance calculated_at.
func (r *domainMetricRepo) UpsertBatch(ctx context.Context, tx *gorm.DB, metrics []*types.DomainMetric) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(metrics) == 0 {
		return nil
	}
	now := time.Now()
	for _, m := range metrics {
		m.CalculatedAt = now
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		return txx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "retailer_id"}, {Name: "page_type"}, {Name: "tab_name"},
				{Name: "period_start"}, {Name: "period_end"}, {Name: "component_type"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"period_type", "component_data", "source_snapshot_id",
				"calculation_method", "is_active", "calculated_at",
			}),
		}).Create(&metrics).Error
	})
}

// MaxCalculatedAt returns the newest calculated_at across a retailer's
// components for the period, or nil when no components exist yet. Snapshot
// last_updated newer than this value means the period needs recomputation.
func (r *domainMetricRepo) MaxCalculatedAt(ctx context.Context, tx *gorm.DB, retailerID string, periodStart, periodEnd time.Time) (*time.Time, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var maxCalculated *time.Time
	err := transaction.WithContext(ctx).
		Model(&types.DomainMetric{}).
		Select("MAX(calculated_at)").
		Where("retailer_id = ? AND period_start = ? AND period_end = ?", retailerID, periodStart, periodEnd).
		Scan(&maxCalculated).Error
	if err != nil {
		return nil, err
	}
	return maxCalculated, nil
}

func (r *domainMetricRepo) ListForPeriod(ctx context.Context, tx *gorm.DB, retailerID string, periodStart, periodEnd time.Time) ([]*types.DomainMetric, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.DomainMetric
	err := transaction.WithContext(ctx).
		Where("retailer_id = ? AND period_start = ? AND period_end = ? AND is_active = ?",
			retailerID, periodStart, periodEnd, true).
		Order("page_type, tab_name, component_type").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *domainMetricRepo) ListByPage(ctx context.Context, tx *gorm.DB, retailerID, pageType string, periodStart, periodEnd time.Time) ([]*types.DomainMetric, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.DomainMetric
	err := transaction.WithContext(ctx).
		Where("retailer_id = ? AND page_type = ? AND period_start = ? AND period_end = ? AND is_active = ?",
			retailerID, pageType, periodStart, periodEnd, true).
		Order("tab_name, component_type").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
