package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LearningGap struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User               *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Subject            string         `gorm:"column:subject;not null;index" json:"subject"`
	ExpectedCredits    float64        `gorm:"column:expected_credits;not null" json:"expected_credits"`
	AccumulatedCredits float64        `gorm:"column:accumulated_credits;not null" json:"accumulated_credits"`
	Addressed          bool           `gorm:"column:addressed;not null;default:false;index" json:"addressed"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LearningGap) TableName() string { return "learning_gap" }
