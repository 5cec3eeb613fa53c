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

type AIInsightRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, insight *types.AIInsight) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AIInsight, error)
	ListForPeriod(ctx context.Context, tx *gorm.DB, retailerID string, periodStart, periodEnd time.Time) ([]*types.AIInsight, error)
	MaxUpdatedAt(ctx context.Context, tx *gorm.DB, retailerID string, periodStart, periodEnd time.Time) (*time.Time, error)
	Review(ctx context.Context, tx *gorm.DB, id uuid.UUID, approved bool, reviewerID uuid.UUID, notes string) error
	Publish(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, publisherID *uuid.UUID) error
}

type aiInsightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAIInsightRepo(db *gorm.DB, baseLog *logger.Logger) AIInsightRepo {
	return &aiInsightRepo{db: db, log: baseLog.With("repo", "AIInsightRepo")}
}

// Upsert writes a freshly generated insight. Regeneration of an existing key
// resets status to pending, deactivates the row, and clears approval and
// publication metadata: every regeneration requires a new human review.
func (r *aiInsightRepo) Upsert(ctx context.Context, tx *gorm.DB, insight *types.AIInsight) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	insight.Status = types.InsightStatusPending
	insight.IsActive = false
	insight.ApprovedBy = nil
	insight.ApprovedAt = nil
	insight.PublishedBy = nil
	insight.PublishedAt = nil
	insight.UpdatedAt = time.Now()

	return transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "retailer_id"}, {Name: "page_type"}, {Name: "tab_name"},
			{Name: "period_start"}, {Name: "period_end"}, {Name: "insight_type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"period_type", "insight_data",
			"model_name", "model_version", "confidence_score", "prompt_hash",
			"status", "is_active",
			"approved_by", "approved_at", "published_by", "published_at",
			"updated_at",
		}),
	}).Create(insight).Error
}

func (r *aiInsightRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AIInsight, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var insight types.AIInsight
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&insight).Error
	if err != nil {
		return nil, err
	}
	if insight.ID == uuid.Nil {
		return nil, nil
	}
	return &insight, nil
}

func (r *aiInsightRepo) ListForPeriod(ctx context.Context, tx *gorm.DB, retailerID string, periodStart, periodEnd time.Time) ([]*types.AIInsight, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.AIInsight
	err := transaction.WithContext(ctx).
		Where("retailer_id = ? AND period_start = ? AND period_end = ?", retailerID, periodStart, periodEnd).
		Order("page_type, tab_name, insight_type").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MaxUpdatedAt returns the newest updated_at across the period's insight
// records, or nil when none exist. A snapshot last_updated newer than this
// value makes the period a regeneration candidate.
func (r *aiInsightRepo) MaxUpdatedAt(ctx context.Context, tx *gorm.DB, retailerID string, periodStart, periodEnd time.Time) (*time.Time, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var maxUpdated *time.Time
	err := transaction.WithContext(ctx).
		Model(&types.AIInsight{}).
		Select("MAX(updated_at)").
		Where("retailer_id = ? AND period_start = ? AND period_end = ?", retailerID, periodStart, periodEnd).
		Scan(&maxUpdated).Error
	if err != nil {
		return nil, err
	}
	return maxUpdated, nil
}

// Review moves a pending insight to approved or rejected. Only pending rows
// transition; re-reviewing an already settled insight is a no-op.
func (r *aiInsightRepo) Review(ctx context.Context, tx *gorm.DB, id uuid.UUID, approved bool, reviewerID uuid.UUID, notes string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	status := types.InsightStatusRejected
	if approved {
		status = types.InsightStatusApproved
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.AIInsight{}).
		Where("id = ? AND status = ?", id, types.InsightStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"approved_by":  reviewerID,
			"approved_at":  now,
			"review_notes": notes,
			"updated_at":   now,
		}).Error
}

// Publish flips approved insights active and stamps publication metadata.
func (r *aiInsightRepo) Publish(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, publisherID *uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.AIInsight{}).
		Where("id IN ? AND status = ?", ids, types.InsightStatusApproved).
		Updates(map[string]interface{}{
			"is_active":    true,
			"published_by": publisherID,
			"published_at": now,
			"updated_at":   now,
		}).Error
}
