package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/types"
)

// ProjectRepo's reads are owner-scoped: an id outside the caller's ownership
// chain behaves exactly like a missing row. Scoping is re-evaluated on every
// call; nothing on this path is cached.
type ProjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, projects []*types.Project) ([]*types.Project, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Project, error)
	GetByIDForOwner(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (*types.Project, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Project, error)
	UpdateFieldsForOwner(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID, updates map[string]interface{}) (bool, error)
	DeleteForOwner(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (bool, error)
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) Create(ctx context.Context, tx *gorm.DB, projects []*types.Project) ([]*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(projects) == 0 {
		return []*types.Project{}, nil
	}
	for _, p := range projects {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var project types.Project
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&project).Error
	if err != nil {
		return nil, err
	}
	if project.ID == uuid.Nil {
		return nil, nil
	}
	return &project, nil
}

func (r *projectRepo) GetByIDForOwner(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var project types.Project
	err := transaction.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Limit(1).
		Find(&project).Error
	if err != nil {
		return nil, err
	}
	if project.ID == uuid.Nil {
		return nil, nil
	}
	return &project, nil
}

func (r *projectRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Project
	if err := transaction.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *projectRepo) UpdateFieldsForOwner(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Project{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *projectRepo) DeleteForOwner(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&types.Project{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
