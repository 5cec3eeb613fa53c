package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/types"
)

type ReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, report *types.Report) (*types.Report, error)
	CreateDomains(ctx context.Context, tx *gorm.DB, domains []*types.ReportDomain) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Report, error)
	GetDomains(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) ([]*types.ReportDomain, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string, publisherID *uuid.UUID) error
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return &reportRepo{db: db, log: baseLog.With("repo", "ReportRepo")}
}

func (r *reportRepo) Create(ctx context.Context, tx *gorm.DB, report *types.Report) (*types.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

func (r *reportRepo) CreateDomains(ctx context.Context, tx *gorm.DB, domains []*types.ReportDomain) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(domains) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Create(&domains).Error
}

func (r *reportRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var report types.Report
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&report).Error
	if err != nil {
		return nil, err
	}
	if report.ID == uuid.Nil {
		return nil, nil
	}
	return &report, nil
}

func (r *reportRepo) GetDomains(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) ([]*types.ReportDomain, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ReportDomain
	err := transaction.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("sort_order").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus transitions a report. Publication stamps published_by/at;
// other transitions leave those fields alone.
func (r *reportRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string, publisherID *uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if status == types.ReportStatusPublished {
		updates["is_active"] = true
		updates["published_by"] = publisherID
		updates["published_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.Report{}).
		Where("id = ?", id).
		Updates(updates).Error
}
