package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

type PipelineJobRepo interface {
	Create(ctx context.Context, tx *gorm.DB, job *types.PipelineJob) (*types.PipelineJob, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PipelineJob, error)
	// ClaimPending atomically moves up to limit pending jobs to processing
	// (SKIP LOCKED) and returns them. Claimed jobs never revert to pending.
	ClaimPending(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PipelineJob, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, id uuid.UUID, intent, result string, metadata datatypes.JSON) error
	MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, errMsg string) error
}

type pipelineJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPipelineJobRepo(db *gorm.DB, baseLog *logger.Logger) PipelineJobRepo {
	return &pipelineJobRepo{
		db:  db,
		log: baseLog.With("repo", "PipelineJobRepo"),
	}
}

func (r *pipelineJobRepo) Create(ctx context.Context, tx *gorm.DB, job *types.PipelineJob) (*types.PipelineJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if job == nil || job.UserID == uuid.Nil {
		return nil, nil
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.Status = types.JobStatusPending
	if err := transaction.WithContext(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

func (r *pipelineJobRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PipelineJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.PipelineJob
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *pipelineJobRepo) ClaimPending(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PipelineJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 5
	}
	now := time.Now().UTC()
	var claimed []*types.PipelineJob
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var jobs []*types.PipelineJob
		if err := txx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", types.JobStatusPending).
			Order("created_at ASC").
			Limit(limit).
			Find(&jobs).Error; err != nil {
			return err
		}
		if len(jobs) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, 0, len(jobs))
		for _, j := range jobs {
			ids = append(ids, j.ID)
		}
		if err := txx.Model(&types.PipelineJob{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":     types.JobStatusProcessing,
				"started_at": now,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}
		for _, j := range jobs {
			j.Status = types.JobStatusProcessing
			j.StartedAt = &now
			j.UpdatedAt = now
		}
		claimed = jobs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *pipelineJobRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, id uuid.UUID, intent, result string, metadata datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	// Guarded on processing so a terminal row is never rewritten.
	return transaction.WithContext(ctx).
		Model(&types.PipelineJob{}).
		Where("id = ? AND status = ?", id, types.JobStatusProcessing).
		Updates(map[string]interface{}{
			"status":       types.JobStatusCompleted,
			"intent":       intent,
			"result":       result,
			"metadata":     metadata,
			"error":        "",
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

func (r *pipelineJobRepo) MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, errMsg string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	return transaction.WithContext(ctx).
		Model(&types.PipelineJob{}).
		Where("id = ? AND status = ?", id, types.JobStatusProcessing).
		Updates(map[string]interface{}{
			"status":       types.JobStatusFailed,
			"error":        errMsg,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}
