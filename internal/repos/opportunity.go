package repos

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

type OpportunityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, opps []*types.Opportunity) ([]*types.Opportunity, error)
	ListFiltered(ctx context.Context, tx *gorm.DB, gradeBand string, keywords []string, limit int) ([]*types.Opportunity, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Opportunity, error)
}

type opportunityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOpportunityRepo(db *gorm.DB, baseLog *logger.Logger) OpportunityRepo {
	return &opportunityRepo{
		db:  db,
		log: baseLog.With("repo", "OpportunityRepo"),
	}
}

func (r *opportunityRepo) Create(ctx context.Context, tx *gorm.DB, opps []*types.Opportunity) ([]*types.Opportunity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(opps) == 0 {
		return []*types.Opportunity{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&opps).Error; err != nil {
		return nil, err
	}
	return opps, nil
}

func (r *opportunityRepo) ListFiltered(ctx context.Context, tx *gorm.DB, gradeBand string, keywords []string, limit int) ([]*types.Opportunity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.Opportunity{})
	if gradeBand != "" {
		q = q.Where("grade_band IS NULL OR grade_band = ?", gradeBand)
	}
	if len(keywords) > 0 {
		conds := transaction.Session(&gorm.Session{NewDB: true})
		for _, kw := range keywords {
			kw = strings.TrimSpace(strings.ToLower(kw))
			if kw == "" {
				continue
			}
			conds = conds.Or("LOWER(keywords::text) LIKE ?", "%"+kw+"%")
		}
		q = q.Where(conds)
	}
	if limit <= 0 {
		limit = 10
	}
	var out []*types.Opportunity
	if err := q.Order("posted_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *opportunityRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Opportunity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 10
	}
	var out []*types.Opportunity
	if err := transaction.WithContext(ctx).
		Order("posted_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
