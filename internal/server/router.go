package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/indecor/dreamspace-backend/internal/handlers"
	"github.com/indecor/dreamspace-backend/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string

	AuthMiddleware *middleware.AuthMiddleware

	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	ProjectHandler *handlers.ProjectHandler
	VariantHandler *handlers.VariantHandler
	ItemHandler    *handlers.ItemHandler
	VersionHandler *handlers.VersionHandler
	JobsHandler    *handlers.JobsHandler
	SSEHandler     *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// Protected
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)

	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.PUT("/user", cfg.UserHandler.UpdateMe)

	// Projects
	protected.GET("/projects", cfg.ProjectHandler.List)
	protected.POST("/projects", cfg.ProjectHandler.Create)
	protected.GET("/projects/:id", cfg.ProjectHandler.Get)
	protected.PATCH("/projects/:id", cfg.ProjectHandler.Update)
	protected.DELETE("/projects/:id", cfg.ProjectHandler.Delete)
	protected.POST("/projects/:id/upload", cfg.ProjectHandler.Upload)
	protected.POST("/projects/:id/generate", cfg.ProjectHandler.Generate)
	protected.GET("/projects/:id/images", cfg.ProjectHandler.ListImages)
	protected.GET("/projects/:id/variants", cfg.VariantHandler.ListByProject)
	protected.POST("/projects/:id/variants", cfg.VariantHandler.CreateForProject)
	protected.GET("/projects/:id/versions", cfg.VersionHandler.ListByProject)
	protected.POST("/projects/:id/versions", cfg.VersionHandler.CreateForProject)

	// Variants
	protected.GET("/variants/:id", cfg.VariantHandler.Get)
	protected.DELETE("/variants/:id", cfg.VariantHandler.Delete)
	protected.GET("/variants/:id/items", cfg.VariantHandler.ListItems)
	protected.POST("/variants/:id/items", cfg.VariantHandler.CreateItem)

	// Items
	protected.GET("/items/:id", cfg.ItemHandler.Get)
	protected.PATCH("/items/:id", cfg.ItemHandler.Update)
	protected.DELETE("/items/:id", cfg.ItemHandler.Delete)

	// Jobs
	protected.GET("/jobs/:id", cfg.JobsHandler.Get)

	// SSE
	protected.GET("/sse/stream", cfg.SSEHandler.Stream)
	protected.POST("/sse/subscribe", cfg.SSEHandler.Subscribe)
	protected.POST("/sse/unsubscribe", cfg.SSEHandler.Unsubscribe)

	return router
}
