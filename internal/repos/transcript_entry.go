package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

type TranscriptEntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.TranscriptEntry) ([]*types.TranscriptEntry, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.TranscriptEntry, error)
}

type transcriptEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTranscriptEntryRepo(db *gorm.DB, baseLog *logger.Logger) TranscriptEntryRepo {
	return &transcriptEntryRepo{
		db:  db,
		log: baseLog.With("repo", "TranscriptEntryRepo"),
	}
}

func (r *transcriptEntryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.TranscriptEntry) ([]*types.TranscriptEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(entries) == 0 {
		return []*types.TranscriptEntry{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *transcriptEntryRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.TranscriptEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.TranscriptEntry
	if userID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
