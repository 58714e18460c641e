package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Name      string    `gorm:"column:name" json:"name"`
	GradeBand string    `gorm:"column:grade_band" json:"grade_band"`
	// Stated interests, e.g. ["robotics","cooking"]; used by the gap nudge
	// and the opportunity matcher.
	Interests datatypes.JSON `gorm:"type:jsonb;column:interests" json:"interests,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }
