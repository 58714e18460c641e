package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

type LearningGapRepo interface {
	Create(ctx context.Context, tx *gorm.DB, gap *types.LearningGap) (*types.LearningGap, error)
	GetUnaddressed(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subject string) (*types.LearningGap, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, includeAddressed bool) ([]*types.LearningGap, error)
	UpdateCredits(ctx context.Context, tx *gorm.DB, id uuid.UUID, accumulated float64) error
	MarkAddressed(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type learningGapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningGapRepo(db *gorm.DB, baseLog *logger.Logger) LearningGapRepo {
	return &learningGapRepo{
		db:  db,
		log: baseLog.With("repo", "LearningGapRepo"),
	}
}

func (r *learningGapRepo) Create(ctx context.Context, tx *gorm.DB, gap *types.LearningGap) (*types.LearningGap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if gap == nil || gap.UserID == uuid.Nil {
		return nil, nil
	}
	if gap.ID == uuid.Nil {
		gap.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(gap).Error; err != nil {
		return nil, err
	}
	return gap, nil
}

func (r *learningGapRepo) GetUnaddressed(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subject string) (*types.LearningGap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || subject == "" {
		return nil, nil
	}
	var row types.LearningGap
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND subject = ? AND addressed = false", userID, subject).
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

func (r *learningGapRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, includeAddressed bool) ([]*types.LearningGap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.LearningGap
	if userID == uuid.Nil {
		return out, nil
	}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if !includeAddressed {
		q = q.Where("addressed = false")
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningGapRepo) UpdateCredits(ctx context.Context, tx *gorm.DB, id uuid.UUID, accumulated float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.LearningGap{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"accumulated_credits": accumulated,
			"updated_at":          time.Now().UTC(),
		}).Error
}

func (r *learningGapRepo) MarkAddressed(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.LearningGap{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"addressed":  true,
			"updated_at": time.Now().UTC(),
		}).Error
}
