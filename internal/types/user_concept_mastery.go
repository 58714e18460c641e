package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserConceptMastery struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_concept_mastery,unique,priority:1" json:"user_id"`
	User            *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ConceptID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_concept_mastery,unique,priority:2" json:"concept_id"`
	Concept         *Concept   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConceptID;references:ID" json:"concept,omitempty"`
	Mastery         float64    `gorm:"column:mastery;not null;default:0" json:"mastery"` // 0..1
	LastPracticedAt *time.Time `gorm:"column:last_practiced_at;index" json:"last_practiced_at,omitempty"`
	// Append-only delta log, newest last, capped at write time.
	History   datatypes.JSON `gorm:"type:jsonb;column:history" json:"history,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserConceptMastery) TableName() string { return "user_concept_mastery" }

// MasteryHistoryEntry is one element of UserConceptMastery.History.
type MasteryHistoryEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	PreviousLevel float64   `json:"previous_level"`
	NewLevel      float64   `json:"new_level"`
	Delta         float64   `json:"delta"`
	Source        string    `json:"source,omitempty"`
	Detail        string    `json:"detail,omitempty"`
}
