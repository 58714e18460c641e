package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TranscriptEntry struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Description string         `gorm:"column:description" json:"description"`
	Subjects    datatypes.JSON `gorm:"type:jsonb;column:subjects" json:"subjects"`
	// 1 credit per 180 hours of activity.
	Credits   float64        `gorm:"column:credits;not null;default:0" json:"credits"`
	RuleKey   string         `gorm:"column:rule_key;index" json:"rule_key"`
	Source    string         `gorm:"column:source;not null;default:'chat'" json:"source"` // chat | image | voice
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TranscriptEntry) TableName() string { return "transcript_entry" }
