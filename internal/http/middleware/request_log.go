package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/specgraph/fgp-backend/internal/platform/logger"
)

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if pid := c.Param("procedure_id"); pid != "" {
			fields = append(fields, "procedure_id", pid)
		}
		if entity := c.Param("entity"); entity != "" {
			fields = append(fields, "entity", entity)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
