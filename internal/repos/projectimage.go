package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/types"
)

type ProjectImageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, images []*types.ProjectImage) ([]*types.ProjectImage, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.ProjectImage, error)
	GetLatestByType(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, imageType string) (*types.ProjectImage, error)
	CountByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (int64, error)
}

type projectImageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectImageRepo(db *gorm.DB, baseLog *logger.Logger) ProjectImageRepo {
	return &projectImageRepo{db: db, log: baseLog.With("repo", "ProjectImageRepo")}
}

func (r *projectImageRepo) Create(ctx context.Context, tx *gorm.DB, images []*types.ProjectImage) ([]*types.ProjectImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(images) == 0 {
		return []*types.ProjectImage{}, nil
	}
	for _, img := range images {
		if img.ID == uuid.Nil {
			img.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (r *projectImageRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.ProjectImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ProjectImage
	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetLatestByType returns the most recently created image of the given type.
// The generator depends on this ordering: with images listed newest first,
// the "first" original is the latest upload.
func (r *projectImageRepo) GetLatestByType(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, imageType string) (*types.ProjectImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var image types.ProjectImage
	err := transaction.WithContext(ctx).
		Where("project_id = ? AND type = ?", projectID, imageType).
		Order("created_at DESC").
		Limit(1).
		Find(&image).Error
	if err != nil {
		return nil, err
	}
	if image.ID == uuid.Nil {
		return nil, nil
	}
	return &image, nil
}

func (r *projectImageRepo) CountByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ProjectImage{}).
		Where("project_id = ?", projectID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
