package repos

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/types"
)

// ProductClassificationCounts are the classifier's write-back onto a
// product snapshot: tier counts, conversion concentration, and wasted-click
// figures.
type ProductClassificationCounts struct {
	Star           int
	Good           int
	Underperformer int

	Top1PctProducts          int
	Top1PctConversionsShare  float64
	Top5PctProducts          int
	Top5PctConversionsShare  float64
	Top10PctProducts         int
	Top10PctConversionsShare float64

	ProductsWithWastedClicks int
	TotalWastedClicks        int64
	WastedClicksPercentage   float64
}

type ProductSnapshotRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, snap *types.ProductSnapshot) (created bool, err error)
	GetByPeriod(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time) (*types.ProductSnapshot, error)
	UpdateClassificationCounts(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time, counts ProductClassificationCounts) error
}

type productSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) ProductSnapshotRepo {
	return &productSnapshotRepo{db: db, log: baseLog.With("repo", "ProductSnapshotRepo")}
}

func (r *productSnapshotRepo) Upsert(ctx context.Context, tx *gorm.DB, snap *types.ProductSnapshot) (bool, error) {
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
			"total_products", "total_impressions", "total_clicks", "total_conversions",
			"avg_ctr", "avg_cvr",
			"products_with_conversions", "products_with_clicks_no_conversions", "clicks_without_conversions",
			"product_classifications", "last_updated",
		}),
	}).Create(snap).Error
	if err != nil {
		return false, err
	}
	return existing == nil, nil
}

func (r *productSnapshotRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time) (*types.ProductSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var snap types.ProductSnapshot
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

func (r *productSnapshotRepo) UpdateClassificationCounts(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time, counts ProductClassificationCounts) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.ProductSnapshot{}).
		Where("retailer_id = ? AND range_start = ? AND range_end = ?", retailerID, rangeStart, rangeEnd).
		Updates(map[string]interface{}{
			"star_count":                   counts.Star,
			"good_count":                   counts.Good,
			"underperformer_count":         counts.Underperformer,
			"top_1_pct_products":           counts.Top1PctProducts,
			"top_1_pct_conversions_share":  counts.Top1PctConversionsShare,
			"top_5_pct_products":           counts.Top5PctProducts,
			"top_5_pct_conversions_share":  counts.Top5PctConversionsShare,
			"top_10_pct_products":          counts.Top10PctProducts,
			"top_10_pct_conversions_share": counts.Top10PctConversionsShare,
			"products_with_wasted_clicks":  counts.ProductsWithWastedClicks,
			"total_wasted_clicks":          counts.TotalWastedClicks,
			"wasted_clicks_percentage":     counts.WastedClicksPercentage,
			"last_updated":                 now,
			"classified_at":                now,
		}).Error
}
