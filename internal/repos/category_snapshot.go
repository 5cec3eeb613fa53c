package repos

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/types"
)

// CategoryHealthCounts are the classifier's write-back onto a category
// snapshot, including the capped per-status offender summary.
type CategoryHealthCounts struct {
	Broken          int
	Underperforming int
	Attention       int
	Healthy         int
	Star            int
	HealthSummary   datatypes.JSON
}

type CategorySnapshotRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, snap *types.CategorySnapshot) (created bool, err error)
	GetByPeriod(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time) (*types.CategorySnapshot, error)
	UpdateHealthCounts(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time, counts CategoryHealthCounts) error
}

type categorySnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategorySnapshotRepo(db *gorm.DB, baseLog *logger.Logger) CategorySnapshotRepo {
	return &categorySnapshotRepo{db: db, log: baseLog.With("repo", "CategorySnapshotRepo")}
}

func (r *categorySnapshotRepo) Upsert(ctx context.Context, tx *gorm.DB, snap *types.CategorySnapshot) (bool, error) {
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
			"total_categories", "total_impressions", "total_clicks", "total_conversions",
			"overall_ctr", "overall_cvr", "last_updated",
		}),
	}).Create(snap).Error
	if err != nil {
		return false, err
	}
	return existing == nil, nil
}

func (r *categorySnapshotRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time) (*types.CategorySnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var snap types.CategorySnapshot
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

func (r *categorySnapshotRepo) UpdateHealthCounts(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time, counts CategoryHealthCounts) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.CategorySnapshot{}).
		Where("retailer_id = ? AND range_start = ? AND range_end = ?", retailerID, rangeStart, rangeEnd).
		Updates(map[string]interface{}{
			"health_broken_count":          counts.Broken,
			"health_underperforming_count": counts.Underperforming,
			"health_attention_count":       counts.Attention,
			"health_healthy_count":         counts.Healthy,
			"health_star_count":            counts.Star,
			"health_summary":               counts.HealthSummary,
			"last_updated":                 now,
			"classified_at":                now,
		}).Error
}

type CategoryNodeSnapshotRepo interface {
	ReplaceForPeriod(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time, nodes []*types.CategoryNodeSnapshot) error
	ListForPeriod(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time) ([]*types.CategoryNodeSnapshot, error)
}

type categoryNodeSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryNodeSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) CategoryNodeSnapshotRepo {
	return &categoryNodeSnapshotRepo{db: db, log: baseLog.With("repo", "CategoryNodeSnapshotRepo")}
}

// ReplaceForPeriod swaps out the whole node tree for a period. Delete and
// insert run in one transaction so readers never see a half-written tree.
func (r *categoryNodeSnapshotRepo) ReplaceForPeriod(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time, nodes []*types.CategoryNodeSnapshot) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.
			Where("retailer_id = ? AND range_type = ? AND range_start = ? AND range_end = ?",
				retailerID, types.PeriodTypeMonth, rangeStart, rangeEnd).
			Delete(&types.CategoryNodeSnapshot{}).Error; err != nil {
			return err
		}
		if len(nodes) == 0 {
			return nil
		}
		return txx.CreateInBatches(&nodes, 200).Error
	})
}

func (r *categoryNodeSnapshotRepo) ListForPeriod(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time) ([]*types.CategoryNodeSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CategoryNodeSnapshot
	err := transaction.WithContext(ctx).
		Where("retailer_id = ? AND range_type = ? AND range_start = ? AND range_end = ?",
			retailerID, types.PeriodTypeMonth, rangeStart, rangeEnd).
		Order("depth, full_path").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
