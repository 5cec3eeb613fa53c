package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/types"
)

// SnapshotKey identifies one retailer/period unit of pipeline work.
type SnapshotKey struct {
	RetailerID string    `gorm:"column:retailer_id"`
	RangeStart time.Time `gorm:"column:range_start"`
	RangeEnd   time.Time `gorm:"column:range_end"`
}

// KeywordTierCounts are the classifier's write-back onto a keywords snapshot.
type KeywordTierCounts struct {
	Star            int
	Strong          int
	Underperforming int
	Poor            int
}

type KeywordsSnapshotRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, snap *types.KeywordsSnapshot) (created bool, err error)
	GetByPeriod(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time) (*types.KeywordsSnapshot, error)
	UpdateTierCounts(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time, counts KeywordTierCounts) error
	ListStaleForClassification(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd *time.Time) ([]SnapshotKey, error)
	ListMonths(ctx context.Context, tx *gorm.DB, retailerID string) ([]types.KeywordsSnapshot, error)
}

type keywordsSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKeywordsSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) KeywordsSnapshotRepo {
	return &keywordsSnapshotRepo{db: db, log: baseLog.With("repo", "KeywordsSnapshotRepo")}
}

// Upsert writes the aggregation fields, advancing last_updated and leaving
// classified_at untouched so the snapshot reads as stale for classification.
func (r *keywordsSnapshotRepo) Upsert(ctx context.Context, tx *gorm.DB, snap *types.KeywordsSnapshot) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	snap.LastUpdated = time.Now()

	var existing types.KeywordsSnapshot
	err := transaction.WithContext(ctx).
		Select("id").
		Where("retailer_id = ? AND range_type = ? AND range_start = ? AND range_end = ?",
			snap.RetailerID, snap.RangeType, snap.RangeStart, snap.RangeEnd).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return false, err
	}

	err = transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "retailer_id"}, {Name: "range_type"}, {Name: "range_start"}, {Name: "range_end"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_keywords", "total_impressions", "total_clicks", "total_conversions",
			"overall_ctr", "overall_cvr", "top_keywords", "last_updated",
		}),
	}).Create(snap).Error
	if err != nil {
		return false, err
	}
	return existing.ID == uuid.Nil, nil
}

func (r *keywordsSnapshotRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time) (*types.KeywordsSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var snap types.KeywordsSnapshot
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

func (r *keywordsSnapshotRepo) UpdateTierCounts(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time, counts KeywordTierCounts) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.KeywordsSnapshot{}).
		Where("retailer_id = ? AND range_start = ? AND range_end = ?", retailerID, rangeStart, rangeEnd).
		Updates(map[string]interface{}{
			"tier_star_count":            counts.Star,
			"tier_strong_count":          counts.Strong,
			"tier_underperforming_count": counts.Underperforming,
			"tier_poor_count":            counts.Poor,
			"last_updated":               now,
			"classified_at":              now,
		}).Error
}

// ListMonths returns every monthly snapshot for a retailer, newest period
// first. Downstream stages use these rows as the list of known periods.
func (r *keywordsSnapshotRepo) ListMonths(ctx context.Context, tx *gorm.DB, retailerID string) ([]types.KeywordsSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var snaps []types.KeywordsSnapshot
	err := transaction.WithContext(ctx).
		Where("retailer_id = ? AND range_type = ?", retailerID, types.PeriodTypeMonth).
		Order("range_start DESC").
		Find(&snaps).Error
	if err != nil {
		return nil, err
	}
	return snaps, nil
}

// ListStaleForClassification selects periods where any of the three
// classified snapshot domains has classified_at null or older than its
// last_updated. The optional range filters narrow to one month.
func (r *keywordsSnapshotRepo) ListStaleForClassification(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd *time.Time) ([]SnapshotKey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	sql := `
		SELECT ks.retailer_id, ks.range_start, ks.range_end
		FROM keywords_snapshots ks
		LEFT JOIN category_performance_snapshots cs
		  ON cs.retailer_id = ks.retailer_id
		 AND cs.range_type = ks.range_type
		 AND cs.range_start = ks.range_start
		 AND cs.range_end = ks.range_end
		LEFT JOIN product_performance_snapshots ps
		  ON ps.retailer_id = ks.retailer_id
		 AND ps.range_type = ks.range_type
		 AND ps.range_start = ks.range_start
		 AND ps.range_end = ks.range_end
		WHERE ks.range_type = 'month'
		  AND (
		    ks.classified_at IS NULL OR ks.classified_at < ks.last_updated OR
		    cs.classified_at IS NULL OR cs.classified_at < cs.last_updated OR
		    ps.classified_at IS NULL OR ps.classified_at < ps.last_updated
		  )
	`
	args := []interface{}{}
	if retailerID != "" {
		sql += ` AND ks.retailer_id = ?`
		args = append(args, retailerID)
	}
	if rangeStart != nil && rangeEnd != nil {
		sql += ` AND ks.range_start = ? AND ks.range_end = ?`
		args = append(args, *rangeStart, *rangeEnd)
	}
	sql += ` ORDER BY ks.range_start DESC`

	var keys []SnapshotKey
	if err := transaction.WithContext(ctx).Raw(sql, args...).Scan(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
