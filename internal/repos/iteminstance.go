package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/types"
)

type ItemInstanceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, items []*types.ItemInstance) ([]*types.ItemInstance, error)
	ListByVariant(ctx context.Context, tx *gorm.DB, variantID uuid.UUID) ([]*types.ItemInstance, error)
	GetByIDForOwner(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (*types.ItemInstance, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type itemInstanceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemInstanceRepo(db *gorm.DB, baseLog *logger.Logger) ItemInstanceRepo {
	return &itemInstanceRepo{db: db, log: baseLog.With("repo", "ItemInstanceRepo")}
}

func (r *itemInstanceRepo) Create(ctx context.Context, tx *gorm.DB, items []*types.ItemInstance) ([]*types.ItemInstance, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(items) == 0 {
		return []*types.ItemInstance{}, nil
	}
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Items list oldest first, unlike every other child collection.
func (r *itemInstanceRepo) ListByVariant(ctx context.Context, tx *gorm.DB, variantID uuid.UUID) ([]*types.ItemInstance, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ItemInstance
	if err := transaction.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByIDForOwner walks the full ownership chain: item -> variant -> project.
func (r *itemInstanceRepo) GetByIDForOwner(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (*types.ItemInstance, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var item types.ItemInstance
	err := transaction.WithContext(ctx).
		Joins("JOIN design_variants ON design_variants.id = item_instances.variant_id").
		Joins("JOIN projects ON projects.id = design_variants.project_id").
		Where("item_instances.id = ? AND projects.owner_id = ?", id, ownerID).
		Limit(1).
		Find(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == uuid.Nil {
		return nil, nil
	}
	return &item, nil
}

func (r *itemInstanceRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ItemInstance{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *itemInstanceRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.ItemInstance{}).Error
}
