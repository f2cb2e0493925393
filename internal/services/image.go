package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/clients/cloudinary"
	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/repos"
	"github.com/indecor/dreamspace-backend/internal/types"
)

type UploadImageInput struct {
	Type     string
	Filename string
	File     io.Reader
}

type RecordImageInput struct {
	Type     string          `json:"type"`
	ImageURL string          `json:"image_url"`
	Metadata json.RawMessage `json:"metadata"`
}

type ImageService interface {
	Upload(ctx context.Context, ownerID, projectID uuid.UUID, input UploadImageInput) (*types.ProjectImage, error)
	Record(ctx context.Context, ownerID, projectID uuid.UUID, input RecordImageInput) (*types.ProjectImage, error)
	List(ctx context.Context, ownerID, projectID uuid.UUID) ([]*types.ProjectImage, error)
}

type imageService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
	imageRepo   repos.ProjectImageRepo
	uploader    cloudinary.Client
}

func NewImageService(
	db *gorm.DB,
	log *logger.Logger,
	projectRepo repos.ProjectRepo,
	imageRepo repos.ProjectImageRepo,
	uploader cloudinary.Client,
) ImageService {
	return &imageService{
		db:          db,
		log:         log.With("service", "ImageService"),
		projectRepo: projectRepo,
		imageRepo:   imageRepo,
		uploader:    uploader,
	}
}

func validImageType(t string) bool {
	switch t {
	case types.ImageTypeOriginal, types.ImageTypeInspo, types.ImageTypeGenerated:
		return true
	}
	return false
}

// Upload pushes the raw bytes to the asset provider, then records the
// resulting URL as a ProjectImage. Provider facts (dimensions, format, the
// provider's public id) land in metadata so the generator can derive from
// the stored asset later.
func (is *imageService) Upload(ctx context.Context, ownerID, projectID uuid.UUID, input UploadImageInput) (*types.ProjectImage, error) {
	if input.Type == "" {
		input.Type = types.ImageTypeOriginal
	}
	if !validImageType(input.Type) {
		return nil, NewValidationError("type", "must be one of original, inspo, generated")
	}
	if is.uploader == nil {
		return nil, fmt.Errorf("asset provider not configured")
	}
	project, err := is.projectRepo.GetByIDForOwner(ctx, nil, ownerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	result, upErr := is.uploader.Upload(ctx, "dreamspace/"+projectID.String(), input.Filename, input.File)
	if upErr != nil {
		return nil, fmt.Errorf("upload to asset provider failed: %w", upErr)
	}
	metadata, mErr := json.Marshal(map[string]interface{}{
		"width":         result.Width,
		"height":        result.Height,
		"format":        result.Format,
		"cloudinary_id": result.PublicID,
	})
	if mErr != nil {
		return nil, fmt.Errorf("failed to encode image metadata: %w", mErr)
	}
	image := &types.ProjectImage{
		ID:        uuid.New(),
		ProjectID: projectID,
		Type:      input.Type,
		ImageURL:  result.SecureURL,
		Metadata:  datatypes.JSON(metadata),
	}
	if _, cErr := is.imageRepo.Create(ctx, nil, []*types.ProjectImage{image}); cErr != nil {
		return nil, fmt.Errorf("failed to record image: %w", cErr)
	}
	is.log.Info("Uploaded project image", "project_id", projectID, "image_id", image.ID, "type", image.Type)
	return image, nil
}

// Record registers an externally hosted image URL without touching the asset
// provider.
func (is *imageService) Record(ctx context.Context, ownerID, projectID uuid.UUID, input RecordImageInput) (*types.ProjectImage, error) {
	if input.Type == "" {
		input.Type = types.ImageTypeOriginal
	}
	if !validImageType(input.Type) {
		return nil, NewValidationError("type", "must be one of original, inspo, generated")
	}
	if input.ImageURL == "" {
		return nil, NewValidationError("image_url", "must not be empty")
	}
	project, err := is.projectRepo.GetByIDForOwner(ctx, nil, ownerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	image := &types.ProjectImage{
		ID:        uuid.New(),
		ProjectID: projectID,
		Type:      input.Type,
		ImageURL:  input.ImageURL,
		Metadata:  datatypes.JSON(input.Metadata),
	}
	if _, cErr := is.imageRepo.Create(ctx, nil, []*types.ProjectImage{image}); cErr != nil {
		return nil, fmt.Errorf("failed to record image: %w", cErr)
	}
	return image, nil
}

func (is *imageService) List(ctx context.Context, ownerID, projectID uuid.UUID) ([]*types.ProjectImage, error) {
	project, err := is.projectRepo.GetByIDForOwner(ctx, nil, ownerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return is.imageRepo.ListByProject(ctx, nil, projectID)
}
