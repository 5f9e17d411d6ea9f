package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/specgraph/fgp-backend/internal/data/db"
	"github.com/specgraph/fgp-backend/internal/http/response"
	"github.com/specgraph/fgp-backend/internal/platform/logger"
)

type HealthHandler struct {
	log      *logger.Logger
	postgres *db.PostgresService
}

func NewHealthHandler(baseLog *logger.Logger, postgres *db.PostgresService) *HealthHandler {
	return &HealthHandler{
		log:      baseLog.With("handler", "HealthHandler"),
		postgres: postgres,
	}
}

// Check reports liveness plus a bounded Postgres ping.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.postgres.Ping(ctx); err != nil {
		h.log.Error("Healthcheck ping failed", "error", err.Error())
		response.RespondError(c, http.StatusServiceUnavailable, "storage_unavailable", err)
		return
	}
	response.RespondOK(c, gin.H{"status": "ok"})
}
