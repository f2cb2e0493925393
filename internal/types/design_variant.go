package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DesignVariant is one design option for a project, created either by a
// direct API write or by the asynchronous variant generator.
type DesignVariant struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project   *Project       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"-"`
	ImageURL  string         `gorm:"column:image_url;not null" json:"image_url"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`

	Items []ItemInstance `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (DesignVariant) TableName() string { return "design_variants" }
