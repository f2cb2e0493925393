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

type RecordVersionInput struct {
	Snapshot json.RawMessage `json:"snapshot"`
	Prompt   string          `json:"prompt"`
}

// VersionService records and lists snapshots; there is deliberately no
// update or delete surface.
type VersionService interface {
	Record(ctx context.Context, ownerID, projectID uuid.UUID, input RecordVersionInput) (*types.Version, error)
	List(ctx context.Context, ownerID, projectID uuid.UUID) ([]*types.Version, error)
}

type versionService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
	versionRepo repos.VersionRepo
}

func NewVersionService(
	db *gorm.DB,
	log *logger.Logger,
	projectRepo repos.ProjectRepo,
	versionRepo repos.VersionRepo,
) VersionService {
	return &versionService{
		db:          db,
		log:         log.With("service", "VersionService"),
		projectRepo: projectRepo,
		versionRepo: versionRepo,
	}
}

func (vs *versionService) Record(ctx context.Context, ownerID, projectID uuid.UUID, input RecordVersionInput) (*types.Version, error) {
	if len(input.Snapshot) == 0 {
		return nil, NewValidationError("snapshot", "must not be empty")
	}
	project, err := vs.projectRepo.GetByIDForOwner(ctx, nil, ownerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	version := &types.Version{
		ID:        uuid.New(),
		ProjectID: projectID,
		Snapshot:  datatypes.JSON(input.Snapshot),
		Prompt:    input.Prompt,
	}
	if _, cErr := vs.versionRepo.Create(ctx, nil, []*types.Version{version}); cErr != nil {
		return nil, fmt.Errorf("failed to record version: %w", cErr)
	}
	return version, nil
}

func (vs *versionService) List(ctx context.Context, ownerID, projectID uuid.UUID) ([]*types.Version, error) {
	project, err := vs.projectRepo.GetByIDForOwner(ctx, nil, ownerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return vs.versionRepo.ListByProject(ctx, nil, projectID)
}
