package types

import (
	"time"

	"github.com/google/uuid"
)

// Project is the top-level container a user owns. OwnerID never changes after
// creation; UpdatedAt advances only when the project row itself is mutated,
// never when children are written.
type Project struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner     *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerID;references:ID" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`

	Images   []ProjectImage  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Variants []DesignVariant `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Versions []Version       `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"versions,omitempty"`
}

func (Project) TableName() string { return "projects" }
