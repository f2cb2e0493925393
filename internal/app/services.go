package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/jobs/pipeline/variant_generate"
	jobruntime "github.com/indecor/dreamspace-backend/internal/jobs/runtime"
	"github.com/indecor/dreamspace-backend/internal/jobs/worker"
	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/services"
	"github.com/indecor/dreamspace-backend/internal/sse"
)

type Services struct {
	Auth    services.AuthService
	User    services.UserService
	Project services.ProjectService
	Image   services.ImageService
	Variant services.VariantService
	Item    services.ItemService
	Version services.VersionService

	JobNotifier services.JobNotifier
	Job         services.JobService

	JobRegistry *jobruntime.Registry
	JobWorker   *worker.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, hub *sse.SSEHub, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	authService := services.NewAuthService(
		db, log,
		r.User,
		r.UserToken,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	userService := services.NewUserService(db, log, r.User)
	projectService := services.NewProjectService(db, log, r.Project)
	imageService := services.NewImageService(db, log, r.Project, r.ProjectImage, clients.Cloudinary)
	variantService := services.NewVariantService(db, log, r.Project, r.DesignVariant, r.ItemInstance)
	itemService := services.NewItemService(db, log, r.DesignVariant, r.ItemInstance)
	versionService := services.NewVersionService(db, log, r.Project, r.Version)

	jobNotifier := services.NewJobNotifier(hub, clients.SSEBus)
	jobService := services.NewJobService(db, log, r.Project, r.JobRun, jobNotifier)

	cloudName := ""
	if clients.Cloudinary != nil {
		cloudName = clients.Cloudinary.CloudName()
	}

	registry := jobruntime.NewRegistry()
	if err := registry.Register(variant_generate.New(
		db, log,
		r.Project,
		r.ProjectImage,
		r.DesignVariant,
		variant_generate.StubDerive(cloudName),
	)); err != nil {
		return Services{}, fmt.Errorf("register variant_generate pipeline: %w", err)
	}

	jobWorker := worker.NewWorker(db, log, r.JobRun, registry, jobNotifier)

	return Services{
		Auth:        authService,
		User:        userService,
		Project:     projectService,
		Image:       imageService,
		Variant:     variantService,
		Item:        itemService,
		Version:     versionService,
		JobNotifier: jobNotifier,
		Job:         jobService,
		JobRegistry: registry,
		JobWorker:   jobWorker,
	}, nil
}
