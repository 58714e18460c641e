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

type UserConceptMasteryRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*types.UserConceptMastery, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserConceptMastery, error)
	Upsert(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID, mastery float64, lastPracticed *time.Time, history datatypes.JSON) error
}

type userConceptMasteryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserConceptMasteryRepo(db *gorm.DB, baseLog *logger.Logger) UserConceptMasteryRepo {
	return &userConceptMasteryRepo{
		db:  db,
		log: baseLog.With("repo", "UserConceptMasteryRepo"),
	}
}

func (r *userConceptMasteryRepo) Get(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*types.UserConceptMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || conceptID == uuid.Nil {
		return nil, nil
	}
	var row types.UserConceptMastery
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

func (r *userConceptMasteryRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserConceptMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.UserConceptMastery
	if userID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userConceptMasteryRepo) Upsert(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID, mastery float64, lastPracticed *time.Time, history datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || conceptID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	row := &types.UserConceptMastery{
		ID:              uuid.New(),
		UserID:          userID,
		ConceptID:       conceptID,
		Mastery:         mastery,
		LastPracticedAt: lastPracticed,
		History:         history,
		UpdatedAt:       now,
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "concept_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"mastery", "last_practiced_at", "history", "updated_at",
			}),
		}).
		Create(row).Error
}
