package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ImageTypeOriginal  = "original"
	ImageTypeInspo     = "inspo"
	ImageTypeGenerated = "generated"
)

// ProjectImage records an uploaded or generated image reference. Type is
// fixed at creation; there is no transition between types. Metadata is an
// opaque caller-defined blob (the upload path stores width/height/format and
// the provider's cloudinary_id in it).
type ProjectImage struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project   *Project       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"-"`
	Type      string         `gorm:"not null;default:'original'" json:"type"`
	ImageURL  string         `gorm:"column:image_url;not null" json:"image_url"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (ProjectImage) TableName() string { return "project_images" }
