package variant_generate

import (
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/repos"
	"github.com/indecor/dreamspace-backend/internal/services"
)

// DeriveFunc turns a base image into the URL of a derived rendition. The
// stub derivation is pure; swapping in a real model only means replacing
// this function.
type DeriveFunc func(baseImage BaseImage, prompt string) (string, error)

type BaseImage struct {
	ID           string
	ImageURL     string
	CloudinaryID string
}

type Pipeline struct {
	db       *gorm.DB
	log      *logger.Logger
	projects repos.ProjectRepo
	images   repos.ProjectImageRepo
	variants repos.DesignVariantRepo
	derive   DeriveFunc
}

func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	projects repos.ProjectRepo,
	images repos.ProjectImageRepo,
	variants repos.DesignVariantRepo,
	derive DeriveFunc,
) *Pipeline {
	return &Pipeline{
		db:       db,
		log:      baseLog.With("job", services.JobTypeVariantGenerate),
		projects: projects,
		images:   images,
		variants: variants,
		derive:   derive,
	}
}

func (p *Pipeline) Type() string { return services.JobTypeVariantGenerate }
