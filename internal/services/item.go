package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/repos"
	"github.com/indecor/dreamspace-backend/internal/types"
)

type CreateItemInput struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Bbox      json.RawMessage `json:"bbox"`
	MaskURL   *string         `json:"mask_url"`
	Transform json.RawMessage `json:"transform"`
}

type UpdateItemInput struct {
	Name      *string         `json:"name"`
	Category  *string         `json:"category"`
	Bbox      json.RawMessage `json:"bbox"`
	MaskURL   *string         `json:"mask_url"`
	Transform json.RawMessage `json:"transform"`
}

type ItemService interface {
	Create(ctx context.Context, ownerID, variantID uuid.UUID, input CreateItemInput) (*types.ItemInstance, error)
	ListByVariant(ctx context.Context, ownerID, variantID uuid.UUID) ([]*types.ItemInstance, error)
	Get(ctx context.Context, ownerID, itemID uuid.UUID) (*types.ItemInstance, error)
	Update(ctx context.Context, ownerID, itemID uuid.UUID, input UpdateItemInput) (*types.ItemInstance, error)
	Delete(ctx context.Context, ownerID, itemID uuid.UUID) error
}

type itemService struct {
	db          *gorm.DB
	log         *logger.Logger
	variantRepo repos.DesignVariantRepo
	itemRepo    repos.ItemInstanceRepo
}

func NewItemService(
	db *gorm.DB,
	log *logger.Logger,
	variantRepo repos.DesignVariantRepo,
	itemRepo repos.ItemInstanceRepo,
) ItemService {
	return &itemService{
		db:          db,
		log:         log.With("service", "ItemService"),
		variantRepo: variantRepo,
		itemRepo:    itemRepo,
	}
}

func (is *itemService) Create(ctx context.Context, ownerID, variantID uuid.UUID, input CreateItemInput) (*types.ItemInstance, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, NewValidationError("category", "must not be empty")
	}
	variant, err := is.variantRepo.GetByIDForOwner(ctx, nil, ownerID, variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load variant: %w", err)
	}
	if variant == nil {
		return nil, ErrNotFound
	}
	item := &types.ItemInstance{
		ID:        uuid.New(),
		VariantID: variantID,
		Name:      name,
		Category:  category,
		Bbox:      datatypes.JSON(input.Bbox),
		MaskURL:   input.MaskURL,
		Transform: datatypes.JSON(input.Transform),
	}
	if _, cErr := is.itemRepo.Create(ctx, nil, []*types.ItemInstance{item}); cErr != nil {
		return nil, fmt.Errorf("failed to create item: %w", cErr)
	}
	return item, nil
}

func (is *itemService) ListByVariant(ctx context.Context, ownerID, variantID uuid.UUID) ([]*types.ItemInstance, error) {
	variant, err := is.variantRepo.GetByIDForOwner(ctx, nil, ownerID, variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load variant: %w", err)
	}
	if variant == nil {
		return nil, ErrNotFound
	}
	return is.itemRepo.ListByVariant(ctx, nil, variantID)
}

func (is *itemService) Get(ctx context.Context, ownerID, itemID uuid.UUID) (*types.ItemInstance, error) {
	item, err := is.itemRepo.GetByIDForOwner(ctx, nil, ownerID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

func (is *itemService) Update(ctx context.Context, ownerID, itemID uuid.UUID, input UpdateItemInput) (*types.ItemInstance, error) {
	item, err := is.Get(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, NewValidationError("name", "must not be empty")
		}
		updates["name"] = name
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, NewValidationError("category", "must not be empty")
		}
		updates["category"] = category
	}
	if input.Bbox != nil {
		updates["bbox"] = datatypes.JSON(input.Bbox)
	}
	if input.MaskURL != nil {
		updates["mask_url"] = *input.MaskURL
	}
	if input.Transform != nil {
		updates["transform"] = datatypes.JSON(input.Transform)
	}
	if len(updates) > 0 {
		if uErr := is.itemRepo.UpdateFields(ctx, nil, item.ID, updates); uErr != nil {
			return nil, fmt.Errorf("failed to update item: %w", uErr)
		}
	}
	return is.Get(ctx, ownerID, itemID)
}

func (is *itemService) Delete(ctx context.Context, ownerID, itemID uuid.UUID) error {
	item, err := is.itemRepo.GetByIDForOwner(ctx, nil, ownerID, itemID)
	if err != nil {
		return fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return ErrNotFound
	}
	if dErr := is.itemRepo.Delete(ctx, nil, item.ID); dErr != nil {
		return fmt.Errorf("failed to delete item: %w", dErr)
	}
	return nil
}
