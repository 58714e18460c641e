package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

type ReviewScheduleRepo interface {
	// Ensure creates the initial schedule for (user, concept) if none exists.
	// A second call is a no-op; an existing schedule is never overwritten.
	Ensure(ctx context.Context, tx *gorm.DB, schedule *types.ReviewSchedule) error
	Get(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*types.ReviewSchedule, error)
	Update(ctx context.Context, tx *gorm.DB, schedule *types.ReviewSchedule) error
	ListDue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, before time.Time, limit int, subject string) ([]*types.ReviewSchedule, error)
}

type reviewScheduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ReviewScheduleRepo {
	return &reviewScheduleRepo{
		db:  db,
		log: baseLog.With("repo", "ReviewScheduleRepo"),
	}
}

func (r *reviewScheduleRepo) Ensure(ctx context.Context, tx *gorm.DB, schedule *types.ReviewSchedule) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if schedule == nil || schedule.UserID == uuid.Nil || schedule.ConceptID == uuid.Nil {
		return nil
	}
	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "concept_id"}},
			DoNothing: true,
		}).
		Create(schedule).Error
}

func (r *reviewScheduleRepo) Get(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*types.ReviewSchedule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || conceptID == uuid.Nil {
		return nil, nil
	}
	var row types.ReviewSchedule
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND concept_id = ?", userID, conceptID).
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

func (r *reviewScheduleRepo) Update(ctx context.Context, tx *gorm.DB, schedule *types.ReviewSchedule) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if schedule == nil || schedule.ID == uuid.Nil {
		return nil
	}
	schedule.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Model(&types.ReviewSchedule{}).
		Where("id = ?", schedule.ID).
		Updates(map[string]interface{}{
			"next_review_at":   schedule.NextReviewAt,
			"interval_days":    schedule.IntervalDays,
			"ease_factor":      schedule.EaseFactor,
			"repetitions":      schedule.Repetitions,
			"last_quality":     schedule.LastQuality,
			"last_reviewed_at": schedule.LastReviewedAt,
			"updated_at":       schedule.UpdatedAt,
		}).Error
}

func (r *reviewScheduleRepo) ListDue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, before time.Time, limit int, subject string) ([]*types.ReviewSchedule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ReviewSchedule
	if userID == uuid.Nil {
		return out, nil
	}
	q := transaction.WithContext(ctx).
		Preload("Concept").
		Joins("JOIN concept ON concept.id = review_schedule.concept_id").
		Where("review_schedule.user_id = ? AND review_schedule.next_review_at <= ?", userID, before)
	if subject != "" {
		q = q.Where("concept.subject = ?", subject)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("review_schedule.next_review_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
