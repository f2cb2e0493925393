package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/repos"
	"github.com/indecor/dreamspace-backend/internal/types"
)

type CreateVariantInput struct {
	ImageURL string          `json:"image_url"`
	Metadata json.RawMessage `json:"metadata"`
}

type VariantService interface {
	Create(ctx context.Context, ownerID, projectID uuid.UUID, input CreateVariantInput) (*types.DesignVariant, error)
	ListByProject(ctx context.Context, ownerID, projectID uuid.UUID) ([]*types.DesignVariant, error)
	Get(ctx context.Context, ownerID, variantID uuid.UUID) (*types.DesignVariant, error)
	Delete(ctx context.Context, ownerID, variantID uuid.UUID) error
}

type variantService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
	variantRepo repos.DesignVariantRepo
	itemRepo    repos.ItemInstanceRepo
}

func NewVariantService(
	db *gorm.DB,
	log *logger.Logger,
	projectRepo repos.ProjectRepo,
	variantRepo repos.DesignVariantRepo,
	itemRepo repos.ItemInstanceRepo,
) VariantService {
	return &variantService{
		db:          db,
		log:         log.With("service", "VariantService"),
		projectRepo: projectRepo,
		variantRepo: variantRepo,
		itemRepo:    itemRepo,
	}
}

// Create writes a variant directly, outside the generation pipeline. Clients
// use this to register variants produced elsewhere.
func (vs *variantService) Create(ctx context.Context, ownerID, projectID uuid.UUID, input CreateVariantInput) (*types.DesignVariant, error) {
	if input.ImageURL == "" {
		return nil, NewValidationError("image_url", "must not be empty")
	}
	project, err := vs.projectRepo.GetByIDForOwner(ctx, nil, ownerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	variant := &types.DesignVariant{
		ID:        uuid.New(),
		ProjectID: projectID,
		ImageURL:  input.ImageURL,
		Metadata:  datatypes.JSON(input.Metadata),
	}
	if _, cErr := vs.variantRepo.Create(ctx, nil, []*types.DesignVariant{variant}); cErr != nil {
		return nil, fmt.Errorf("failed to create variant: %w", cErr)
	}
	vs.log.Info("Created variant", "project_id", projectID, "variant_id", variant.ID)
	return variant, nil
}

func (vs *variantService) ListByProject(ctx context.Context, ownerID, projectID uuid.UUID) ([]*types.DesignVariant, error) {
	project, err := vs.projectRepo.GetByIDForOwner(ctx, nil, ownerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return vs.variantRepo.ListByProject(ctx, nil, projectID)
}

func (vs *variantService) Get(ctx context.Context, ownerID, variantID uuid.UUID) (*types.DesignVariant, error) {
	variant, err := vs.variantRepo.GetByIDForOwner(ctx, nil, ownerID, variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load variant: %w", err)
	}
	if variant == nil {
		return nil, ErrNotFound
	}
	items, iErr := vs.itemRepo.ListByVariant(ctx, nil, variant.ID)
	if iErr != nil {
		return nil, fmt.Errorf("failed to load variant items: %w", iErr)
	}
	variant.Items = make([]types.ItemInstance, 0, len(items))
	for _, it := range items {
		variant.Items = append(variant.Items, *it)
	}
	return variant, nil
}

func (vs *variantService) Delete(ctx context.Context, ownerID, variantID uuid.UUID) error {
	ok, err := vs.variantRepo.DeleteForOwner(ctx, nil, ownerID, variantID)
	if err != nil {
		return fmt.Errorf("failed to delete variant: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	vs.log.Info("Deleted variant", "variant_id", variantID)
	return nil
}
