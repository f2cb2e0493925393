package app

import (
	"github.com/gin-gonic/gin"

	"github.com/indecor/dreamspace-backend/internal/middleware"
	"github.com/indecor/dreamspace-backend/internal/server"
)

func wireRouter(cfg Config, h Handlers, authMiddleware *middleware.AuthMiddleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		AuthMiddleware: authMiddleware,
		AuthHandler:    h.Auth,
		UserHandler:    h.User,
		ProjectHandler: h.Project,
		VariantHandler: h.Variant,
		ItemHandler:    h.Item,
		VersionHandler: h.Version,
		JobsHandler:    h.Jobs,
		SSEHandler:     h.SSE,
	})
}
