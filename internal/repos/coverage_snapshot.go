package repos

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/types"
)

type CoverageSnapshotRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, snap *types.CoverageSnapshot) (created bool, err error)
	GetByPeriod(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time) (*types.CoverageSnapshot, error)
}

type coverageSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCoverageSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) CoverageSnapshotRepo {
	return &coverageSnapshotRepo{db: db, log: baseLog.With("repo", "CoverageSnapshotRepo")}
}

func (r *coverageSnapshotRepo) Upsert(ctx context.Context, tx *gorm.DB, snap *types.CoverageSnapshot) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	snap.LastUpdated = time.Now()

	existing, err := r.GetByPeriod(ctx, transaction, snap.RetailerID, snap.RangeStart, snap.RangeEnd)
	if err != nil {
		return false, err
	}

	err = transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "retailer_id"}, {Name: "range_type"}, {Name: "range_start"}, {Name: "range_end"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_products", "active_products", "zero_visibility_products", "coverage_pct",
			"top_category", "biggest_gap", "last_updated",
		}),
	}).Create(snap).Error
	if err != nil {
		return false, err
	}
	return existing == nil, nil
}

func (r *coverageSnapshotRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time) (*types.CoverageSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var snap types.CoverageSnapshot
	err := transaction.WithContext(ctx).
		Where("retailer_id = ? AND range_type = ? AND range_start = ? AND range_end = ?",
			retailerID, types.PeriodTypeMonth, rangeStart, rangeEnd).
		Limit(1).
		Find(&snap).Error
	if err != nil {
		return nil, err
	}
	if snap.RetailerID == "" {
		return nil, nil
	}
	return &snap, nil
}
