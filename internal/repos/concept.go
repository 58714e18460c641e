package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

// ConceptEdge is one directed prerequisite edge (concept requires prerequisite).
type ConceptEdge struct {
	ConceptID      uuid.UUID `gorm:"column:concept_id"`
	PrerequisiteID uuid.UUID `gorm:"column:prerequisite_id"`
}

type ConceptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, concepts []*types.Concept) ([]*types.Concept, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Concept, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Concept, error)
	ListAll(ctx context.Context, tx *gorm.DB, subject string) ([]*types.Concept, error)
	ListEdges(ctx context.Context, tx *gorm.DB) ([]ConceptEdge, error)
	AddPrerequisite(ctx context.Context, tx *gorm.DB, conceptID, prerequisiteID uuid.UUID) error
	SearchByName(ctx context.Context, tx *gorm.DB, terms []string, limit int) ([]*types.Concept, error)
}

type conceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return &conceptRepo{
		db:  db,
		log: baseLog.With("repo", "ConceptRepo"),
	}
}

func (r *conceptRepo) Create(ctx context.Context, tx *gorm.DB, concepts []*types.Concept) ([]*types.Concept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(concepts) == 0 {
		return []*types.Concept{}, nil
	}
	if err := transaction.WithContext(ctx).Omit("Prerequisites").Create(&concepts).Error; err != nil {
		return nil, err
	}
	return concepts, nil
}

func (r *conceptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Concept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Concept
	err := transaction.WithContext(ctx).
		Preload("Prerequisites").
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

func (r *conceptRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Concept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Concept
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) ListAll(ctx context.Context, tx *gorm.DB, subject string) ([]*types.Concept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Preload("Prerequisites")
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}
	var out []*types.Concept
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) ListEdges(ctx context.Context, tx *gorm.DB) ([]ConceptEdge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []ConceptEdge
	if err := transaction.WithContext(ctx).
		Table("concept_prerequisite").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) AddPrerequisite(ctx context.Context, tx *gorm.DB, conceptID, prerequisiteID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if conceptID == uuid.Nil || prerequisiteID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).Exec(`
		INSERT INTO concept_prerequisite (concept_id, prerequisite_id)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`, conceptID, prerequisiteID).Error
}

func (r *conceptRepo) SearchByName(ctx context.Context, tx *gorm.DB, terms []string, limit int) ([]*types.Concept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Concept
	if len(terms) == 0 {
		return out, nil
	}
	q := transaction.WithContext(ctx).Model(&types.Concept{})
	conds := transaction.Session(&gorm.Session{NewDB: true})
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		conds = conds.Or("name ILIKE ? OR subject ILIKE ?", "%"+t+"%", "%"+t+"%")
	}
	if limit <= 0 {
		limit = 20
	}
	if err := q.Where(conds).Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
