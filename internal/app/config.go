package app

import (
	"strings"

	"github.com/specgraph/fgp-backend/internal/platform/envutil"
	"github.com/specgraph/fgp-backend/internal/platform/logger"
)

type Config struct {
	Port          string
	LogMode       string
	AllowOrigins  []string
	InsertRetries int
}

func LoadConfig(log *logger.Logger) Config {
	origins := envutil.GetEnv("CORS_ALLOW_ORIGINS", "", log)
	var allowOrigins []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowOrigins = append(allowOrigins, o)
		}
	}
	return Config{
		Port:          envutil.GetEnv("PORT", "8080", log),
		LogMode:       envutil.GetEnv("LOG_MODE", "development", log),
		AllowOrigins:  allowOrigins,
		InsertRetries: envutil.GetEnvAsInt("INSERT_MAX_RETRIES", 3, log),
	}
}
