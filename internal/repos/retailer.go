package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/types"
)

type RetailerRepo interface {
	GetEnabled(ctx context.Context, tx *gorm.DB, retailerID string) ([]*types.RetailerMetadata, error)
	GetByRetailerID(ctx context.Context, tx *gorm.DB, retailerID string) (*types.RetailerMetadata, error)
}

type retailerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRetailerRepo(db *gorm.DB, baseLog *logger.Logger) RetailerRepo {
	return &retailerRepo{db: db, log: baseLog.With("repo", "RetailerRepo")}
}

// GetEnabled lists retailers with snapshots enabled, optionally narrowed to
// a single retailer id.
func (r *retailerRepo) GetEnabled(ctx context.Context, tx *gorm.DB, retailerID string) ([]*types.RetailerMetadata, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("snapshot_enabled = ?", true)
	if retailerID != "" {
		q = q.Where("retailer_id = ?", retailerID)
	}
	var out []*types.RetailerMetadata
	if err := q.Order("retailer_id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *retailerRepo) GetByRetailerID(ctx context.Context, tx *gorm.DB, retailerID string) (*types.RetailerMetadata, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var meta types.RetailerMetadata
	err := transaction.WithContext(ctx).
		Where("retailer_id = ?", retailerID).
		Limit(1).
		Find(&meta).Error
	if err != nil {
		return nil, err
	}
	if meta.RetailerID == "" {
		return nil, nil
	}
	return &meta, nil
}
