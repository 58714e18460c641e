package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Opportunity struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	// Interest keywords this opportunity matches, e.g. ["robotics","space"].
	Keywords  datatypes.JSON `gorm:"type:jsonb;column:keywords" json:"keywords,omitempty"`
	GradeBand *string        `gorm:"column:grade_band;index" json:"grade_band,omitempty"`
	URL       string         `gorm:"column:url" json:"url"`
	PostedAt  time.Time      `gorm:"column:posted_at;not null;index" json:"posted_at"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Opportunity) TableName() string { return "opportunity" }
