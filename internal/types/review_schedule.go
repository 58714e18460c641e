package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewSchedule struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index:idx_review_schedule,unique,priority:1" json:"user_id"`
	User           *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ConceptID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_review_schedule,unique,priority:2" json:"concept_id"`
	Concept        *Concept       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConceptID;references:ID" json:"concept,omitempty"`
	NextReviewAt   time.Time      `gorm:"column:next_review_at;not null;index" json:"next_review_at"`
	IntervalDays   int            `gorm:"column:interval_days;not null;default:1" json:"interval_days"` // >= 1
	EaseFactor     float64        `gorm:"column:ease_factor;not null;default:2.5" json:"ease_factor"`   // >= 1.3
	Repetitions    int            `gorm:"column:repetitions;not null;default:0" json:"repetitions"`
	LastQuality    int            `gorm:"column:last_quality;not null;default:0" json:"last_quality"` // 0..5
	LastReviewedAt *time.Time     `gorm:"column:last_reviewed_at" json:"last_reviewed_at,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ReviewSchedule) TableName() string { return "review_schedule" }
