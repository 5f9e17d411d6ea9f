package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/specgraph/fgp-backend/internal/data/db"
	"github.com/specgraph/fgp-backend/internal/platform/logger"
)

// App holds everything main needs: the wired router plus the handles that
// have to be closed on shutdown.
type App struct {
	Log      *logger.Logger
	Cfg      Config
	Postgres *db.PostgresService
	DB       *gorm.DB
	Repos    Repos
	Services Services
	Router   *gin.Engine
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

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet)
	handlerset := wireHandlers(log, pg, serviceset)
	router := wireRouter(log, cfg, handlerset)

	return &App{
		Log:      log,
		Cfg:      cfg,
		Postgres: pg,
		DB:       theDB,
		Repos:    reposet,
		Services: serviceset,
		Router:   router,
	}, nil
}

// Close drains the pool and flushes the logger. Called once from main.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Postgres != nil {
		if err := a.Postgres.Close(); err != nil {
			a.Log.Warn("Closing Postgres pool failed", "error", err.Error())
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
