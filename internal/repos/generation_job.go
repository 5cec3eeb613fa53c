package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/types"
)

type GenerationJobRepo interface {
	Create(ctx context.Context, tx *gorm.DB, job *types.InsightGenerationJob) (*types.InsightGenerationJob, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.InsightGenerationJob, error)
	MarkRunning(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	MarkCompleted(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, errMessage string) error
}

type generationJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationJobRepo(db *gorm.DB, baseLog *logger.Logger) GenerationJobRepo {
	return &generationJobRepo{db: db, log: baseLog.With("repo", "GenerationJobRepo")}
}

func (r *generationJobRepo) Create(ctx context.Context, tx *gorm.DB, job *types.InsightGenerationJob) (*types.InsightGenerationJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	job.Status = types.JobStatusQueued
	if err := transaction.WithContext(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

func (r *generationJobRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.InsightGenerationJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var job types.InsightGenerationJob
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == uuid.Nil {
		return nil, nil
	}
	return &job, nil
}

func (r *generationJobRepo) MarkRunning(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.InsightGenerationJob{}).
		Where("id = ? AND status = ?", id, types.JobStatusQueued).
		Updates(map[string]interface{}{
			"status":     types.JobStatusRunning,
			"started_at": now,
			"updated_at": now,
		}).Error
}

func (r *generationJobRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.InsightGenerationJob{}).
		Where("id = ? AND status = ?", id, types.JobStatusRunning).
		Updates(map[string]interface{}{
			"status":       types.JobStatusCompleted,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

func (r *generationJobRepo) MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, errMessage string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.InsightGenerationJob{}).
		Where("id = ? AND status IN ?", id, []string{types.JobStatusQueued, types.JobStatusRunning}).
		Updates(map[string]interface{}{
			"status":        types.JobStatusFailed,
			"completed_at":  now,
			"error_message": errMessage,
			"updated_at":    now,
		}).Error
}
