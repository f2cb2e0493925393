package app

import (
	"github.com/indecor/dreamspace-backend/internal/handlers"
	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/sse"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Project *handlers.ProjectHandler
	Variant *handlers.VariantHandler
	Item    *handlers.ItemHandler
	Version *handlers.VersionHandler
	Jobs    *handlers.JobsHandler
	SSE     *handlers.SSEHandler
}

func wireHandlers(log *logger.Logger, s Services, hub *sse.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:    handlers.NewAuthHandler(s.Auth),
		User:    handlers.NewUserHandler(s.User),
		Project: handlers.NewProjectHandler(s.Project, s.Image, s.Job),
		Variant: handlers.NewVariantHandler(s.Variant, s.Item),
		Item:    handlers.NewItemHandler(s.Item),
		Version: handlers.NewVersionHandler(s.Version),
		Jobs:    handlers.NewJobsHandler(s.Job),
		SSE:     handlers.NewSSEHandler(hub),
	}
}
