package repos

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/types"
)

type AuctionSnapshotRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, snap *types.AuctionSnapshot) (created bool, err error)
	GetByPeriod(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time) (*types.AuctionSnapshot, error)
}

type auctionSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuctionSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) AuctionSnapshotRepo {
	return &auctionSnapshotRepo{db: db, log: baseLog.With("repo", "AuctionSnapshotRepo")}
}

func (r *auctionSnapshotRepo) Upsert(ctx context.Context, tx *gorm.DB, snap *types.AuctionSnapshot) (bool, error) {
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
			"avg_impression_share", "total_competitors",
			"avg_overlap_rate", "avg_outranking_share", "avg_being_outranked",
			"competitors",
			"top_competitor_id", "top_competitor_overlap_rate", "top_competitor_outranking_you",
			"biggest_threat_id", "biggest_threat_overlap_rate", "biggest_threat_outranking_you",
			"best_opportunity_id", "best_opportunity_overlap_rate", "best_opportunity_you_outranking",
			"last_updated",
		}),
	}).Create(snap).Error
	if err != nil {
		return false, err
	}
	return existing == nil, nil
}

func (r *auctionSnapshotRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, retailerID string, rangeStart, rangeEnd time.Time) (*types.AuctionSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var snap types.AuctionSnapshot
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
