package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Concept struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null;index" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	Subject     string    `gorm:"column:subject;not null;index" json:"subject"`
	GradeBand   *string   `gorm:"column:grade_band;index" json:"grade_band,omitempty"`
	// Directed edges: this concept requires each prerequisite. The inverse
	// (dependents) is queried through the same join table.
	Prerequisites []*Concept     `gorm:"many2many:concept_prerequisite;joinForeignKey:ConceptID;joinReferences:PrerequisiteID" json:"prerequisites,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Concept) TableName() string { return "concept" }
