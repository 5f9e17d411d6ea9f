package app

import (
	"github.com/gin-gonic/gin"

	"github.com/specgraph/fgp-backend/internal/data/db"
	httpH "github.com/specgraph/fgp-backend/internal/http/handlers"
	"github.com/specgraph/fgp-backend/internal/platform/logger"
	"github.com/specgraph/fgp-backend/internal/server"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Procedure *httpH.ProcedureHandler
}

func wireHandlers(log *logger.Logger, postgres *db.PostgresService, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(log, postgres),
		Procedure: httpH.NewProcedureHandler(log, s.Catalog, s.Ledger),
	}
}

func wireRouter(log *logger.Logger, cfg Config, h Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:          log,
		Mode:         cfg.LogMode,
		AllowOrigins: cfg.AllowOrigins,
		Health:       h.Health,
		Procedure:    h.Procedure,
	})
}
