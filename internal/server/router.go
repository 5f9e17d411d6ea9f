package server

import (
	"github.com/gin-gonic/gin"

	"github.com/specgraph/fgp-backend/internal/http/handlers"
	"github.com/specgraph/fgp-backend/internal/http/middleware"
	"github.com/specgraph/fgp-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log          *logger.Logger
	Mode         string
	AllowOrigins []string

	Health    *handlers.HealthHandler
	Procedure *handlers.ProcedureHandler
}

// NewRouter assembles the gin engine and the /procedures route surface.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode == "release" || cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(middleware.CORS(cfg.AllowOrigins))

	r.GET("/healthcheck", cfg.Health.Check)

	procedures := r.Group("/procedures")
	{
		procedures.GET("", cfg.Procedure.List)
		procedures.POST("", cfg.Procedure.Create)
		procedures.GET("/:procedure_id/:entity", cfg.Procedure.GetLatest)
		procedures.POST("/:procedure_id/:entity", cfg.Procedure.Insert)
		procedures.DELETE("/:procedure_id/:entity", cfg.Procedure.Delete)
		procedures.GET("/:procedure_id/:entity/history", cfg.Procedure.GetHistory)
		procedures.GET("/:procedure_id/:entity/history/:graph_id", cfg.Procedure.GetVersion)
	}

	return r
}
