package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ItemInstance is an individual furniture/decor item within a variant. Bbox
// and Transform are opaque blobs; conventional keys are {x,y,width,height}
// and {rotation,scale,position}.
type ItemInstance struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	VariantID uuid.UUID      `gorm:"type:uuid;not null;index" json:"variant_id"`
	Variant   *DesignVariant `gorm:"constraint:OnDelete:CASCADE;foreignKey:VariantID;references:ID" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	Category  string         `gorm:"not null" json:"category"`
	Bbox      datatypes.JSON `gorm:"column:bbox;type:jsonb" json:"bbox,omitempty"`
	MaskURL   *string        `gorm:"column:mask_url" json:"mask_url,omitempty"`
	Transform datatypes.JSON `gorm:"column:transform;type:jsonb" json:"transform,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (ItemInstance) TableName() string { return "item_instances" }
