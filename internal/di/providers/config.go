// Package providers contains dependency injection providers for the
// Mindleaf engine.
package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/mindleafapp/mindleaf/internal/config"
	"github.com/mindleafapp/mindleaf/internal/logger"
)

// shutdownTimeout bounds graceful shutdown of background components.
const shutdownTimeout = 10 * time.Second

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.Load()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	log.Info("starting mindleaf engine",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
	)

	return log, nil
}
