package app

import (
	"github.com/guttosm/compliance-track/config"
	"github.com/guttosm/compliance-track/internal/service"
)

// ServiceComponents holds the services that work without a database.
type ServiceComponents struct {
	Estimator    service.MigrationEstimator
	SessionStore *service.MemorySessionStore
}

// InitializeServices initializes the migration estimator and the in-memory session store.
func InitializeServices(cfg config.SessionConfig) *ServiceComponents {
	estimator := service.NewMigrationEstimator()

	return &ServiceComponents{
		Estimator:    estimator,
		SessionStore: service.NewMemorySessionStore(cfg.MaxSessions, cfg.TTL, estimator),
	}
}

// Stop releases background workers owned by the services.
func (c *ServiceComponents) Stop() {
	if c.SessionStore != nil {
		c.SessionStore.Stop()
	}
}
