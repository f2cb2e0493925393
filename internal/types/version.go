package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Version is an append-only point-in-time snapshot of project state for
// undo/redo. Rows are never mutated after creation; no update path exists.
type Version struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project   *Project       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"-"`
	Snapshot  datatypes.JSON `gorm:"column:snapshot;type:jsonb" json:"snapshot"`
	Prompt    string         `gorm:"column:prompt" json:"prompt"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (Version) TableName() string { return "versions" }
