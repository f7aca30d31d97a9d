package app

import (
	"github.com/guttosm/compliance-track/config"
	"github.com/guttosm/compliance-track/internal/logger"
)

const serviceName = "compliance-track"

// InitializeLogger installs the global logger.
func InitializeLogger(cfg config.LogConfig) {
	logger.Init(logger.Options{Level: cfg.Level, Pretty: cfg.Pretty, Service: serviceName})
}
