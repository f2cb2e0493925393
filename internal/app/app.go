package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/db"
	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/middleware"
	"github.com/indecor/dreamspace-backend/internal/sse"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	SSEHub   *sse.SSEHub
	cancel   context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	sseHub := sse.NewSSEHub(log)
	clients := wireClients(log)
	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, sseHub, clients)
	if err != nil {
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, sseHub)
	authMiddleware := middleware.NewAuthMiddleware(log, serviceset.Auth)
	router := wireRouter(cfg, handlerset, authMiddleware)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Clients:  clients,
		SSEHub:   sseHub,
	}, nil
}

// Start launches the background pieces: the job worker pool and, when Redis
// is configured, the bus forwarder that mirrors cross-instance SSE messages
// into the local hub.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Services.JobWorker != nil {
		a.Services.JobWorker.Start(ctx)
	}
	if a.Clients.SSEBus != nil {
		a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast)
	}
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Clients.SSEBus != nil {
		_ = a.Clients.SSEBus.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
