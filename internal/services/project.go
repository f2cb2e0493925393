package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/repos"
	"github.com/indecor/dreamspace-backend/internal/types"
)

type CreateProjectInput struct {
	Name string `json:"name"`
}

type UpdateProjectInput struct {
	Name *string `json:"name"`
}

type ProjectService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateProjectInput) (*types.Project, error)
	Get(ctx context.Context, ownerID, projectID uuid.UUID) (*types.Project, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*types.Project, error)
	Update(ctx context.Context, ownerID, projectID uuid.UUID, input UpdateProjectInput) (*types.Project, error)
	Delete(ctx context.Context, ownerID, projectID uuid.UUID) error
}

type projectService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
}

func NewProjectService(db *gorm.DB, log *logger.Logger, projectRepo repos.ProjectRepo) ProjectService {
	return &projectService{db: db, log: log.With("service", "ProjectService"), projectRepo: projectRepo}
}

func (ps *projectService) Create(ctx context.Context, ownerID uuid.UUID, input CreateProjectInput) (*types.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}
	project := &types.Project{
		ID:      uuid.New(),
		Name:    name,
		OwnerID: ownerID,
	}
	created, err := ps.projectRepo.Create(ctx, nil, []*types.Project{project})
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	ps.log.Info("Created project", "project_id", project.ID, "owner_id", ownerID)
	return created[0], nil
}

func (ps *projectService) Get(ctx context.Context, ownerID, projectID uuid.UUID) (*types.Project, error) {
	project, err := ps.projectRepo.GetByIDForOwner(ctx, nil, ownerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return project, nil
}

func (ps *projectService) List(ctx context.Context, ownerID uuid.UUID) ([]*types.Project, error) {
	return ps.projectRepo.ListByOwner(ctx, nil, ownerID)
}

// Update accepts name only. Other project fields are immutable through the
// API; child writes never touch the project row.
func (ps *projectService) Update(ctx context.Context, ownerID, projectID uuid.UUID, input UpdateProjectInput) (*types.Project, error) {
	updates := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, NewValidationError("name", "must not be empty")
		}
		updates["name"] = name
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		ok, err := ps.projectRepo.UpdateFieldsForOwner(ctx, nil, ownerID, projectID, updates)
		if err != nil {
			return nil, fmt.Errorf("failed to update project: %w", err)
		}
		if !ok {
			return nil, ErrNotFound
		}
	}
	return ps.Get(ctx, ownerID, projectID)
}

func (ps *projectService) Delete(ctx context.Context, ownerID, projectID uuid.UUID) error {
	ok, err := ps.projectRepo.DeleteForOwner(ctx, nil, ownerID, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	ps.log.Info("Deleted project", "project_id", projectID, "owner_id", ownerID)
	return nil
}
