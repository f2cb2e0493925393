package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/types"
)

// VersionRepo is append-only on purpose: no update or single-row delete
// exists. Rows disappear only through the project cascade.
type VersionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, versions []*types.Version) ([]*types.Version, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Version, error)
}

type versionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVersionRepo(db *gorm.DB, baseLog *logger.Logger) VersionRepo {
	return &versionRepo{db: db, log: baseLog.With("repo", "VersionRepo")}
}

func (r *versionRepo) Create(ctx context.Context, tx *gorm.DB, versions []*types.Version) ([]*types.Version, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(versions) == 0 {
		return []*types.Version{}, nil
	}
	for _, v := range versions {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *versionRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Version, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Version
	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
