package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/types"
)

type DesignVariantRepo interface {
	Create(ctx context.Context, tx *gorm.DB, variants []*types.DesignVariant) ([]*types.DesignVariant, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.DesignVariant, error)
	GetByIDForOwner(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (*types.DesignVariant, error)
	DeleteForOwner(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (bool, error)
	CountByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (int64, error)
}

type designVariantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDesignVariantRepo(db *gorm.DB, baseLog *logger.Logger) DesignVariantRepo {
	return &designVariantRepo{db: db, log: baseLog.With("repo", "DesignVariantRepo")}
}

func (r *designVariantRepo) Create(ctx context.Context, tx *gorm.DB, variants []*types.DesignVariant) ([]*types.DesignVariant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(variants) == 0 {
		return []*types.DesignVariant{}, nil
	}
	for _, v := range variants {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *designVariantRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.DesignVariant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.DesignVariant
	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Preload("Items").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByIDForOwner walks one hop of the ownership chain: variant -> project.
func (r *designVariantRepo) GetByIDForOwner(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (*types.DesignVariant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var variant types.DesignVariant
	err := transaction.WithContext(ctx).
		Joins("JOIN projects ON projects.id = design_variants.project_id").
		Where("design_variants.id = ? AND projects.owner_id = ?", id, ownerID).
		Limit(1).
		Find(&variant).Error
	if err != nil {
		return nil, err
	}
	if variant.ID == uuid.Nil {
		return nil, nil
	}
	return &variant, nil
}

func (r *designVariantRepo) DeleteForOwner(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	variant, err := r.GetByIDForOwner(ctx, transaction, ownerID, id)
	if err != nil {
		return false, err
	}
	if variant == nil {
		return false, nil
	}
	res := transaction.WithContext(ctx).
		Where("id = ?", variant.ID).
		Delete(&types.DesignVariant{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *designVariantRepo) CountByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.DesignVariant{}).
		Where("project_id = ?", projectID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
