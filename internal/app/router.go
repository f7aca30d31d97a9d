package app

import (
	"context"
	"time"

	"github.com/guttosm/compliance-track/config"
	"github.com/guttosm/compliance-track/internal/http"
	"github.com/guttosm/compliance-track/internal/middleware"
	"github.com/guttosm/compliance-track/internal/service"
)

const (
	idempotencyCapacity = 10000
	idempotencyTTL      = 24 * time.Hour
)

// RouterComponents holds the handlers, the router configuration and the background
// workers the router depends on.
type RouterComponents struct {
	HealthHandler *http.HealthHandler
	Config        http.RouterConfig
	Lookup        *service.CatalogSubstanceLookup
}

// InitializeRouter builds the router configuration. Catalog, history and accounts are
// only wired when db is non-nil; accounts may be nil.
func InitializeRouter(
	services *ServiceComponents,
	db *DatabaseComponents,
	accounts *AccountComponents,
	cfg config.Config,
) *RouterComponents {
	health := http.NewHealthHandler()

	routerCfg := http.RouterConfig{
		RequestTimeout: cfg.Server.RequestTimeout,
		EnableAuth:     cfg.Auth.Enabled,
		APIKeys:        cfg.Auth.APIKeys,
		CORSOrigins:    cfg.Server.CORSOrigins,
		SwaggerUser:    cfg.Server.SwaggerUser,
		SwaggerPass:    cfg.Server.SwaggerPass,
		Idempotency:    middleware.NewIdempotencyStore(idempotencyCapacity, idempotencyTTL),
	}
	if cfg.Server.RateLimit > 0 {
		routerCfg.Limiter = middleware.NewLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
	}
	if services != nil {
		routerCfg.Estimator = services.Estimator
		routerCfg.SessionStore = services.SessionStore
	}
	if accounts != nil {
		routerCfg.IdentityProvider = accounts.Provider
	}

	components := &RouterComponents{HealthHandler: health, Config: routerCfg}
	if db == nil {
		return components
	}

	for name, cb := range db.Breakers {
		health.AddBreaker(name, cb)
	}
	if db.DB != nil {
		health.AddCheck("mongodb", func(ctx context.Context) error {
			return db.DB.HealthCheck(ctx)
		})
	}

	if db.ActivityLog != nil {
		routerCfg.Activity = middleware.NewActivityRecorder(db.ActivityLog, middleware.DefaultRecorderConfig())
		routerCfg.HistoryService = service.NewHistoryService(db.ActivityLog)
		health.WatchActivity(routerCfg.Activity)
	}

	// Catalog writes invalidate cached lookups.
	if db.ChemicalsRepo != nil && db.RegulationsRepo != nil {
		lookup := service.NewSubstanceLookup(db.ChemicalsRepo, service.LookupConfig{
			DefaultLimit: cfg.Lookup.DefaultLimit,
			MaxLimit:     cfg.Lookup.MaxLimit,
			CacheEnabled: cfg.Cache.Enabled,
			CacheSize:    cfg.Cache.Size,
			CacheTTL:     cfg.Cache.TTL,
		})
		onChange := service.WithChangeHook(lookup.Invalidate)

		routerCfg.SubstanceLookup = lookup
		routerCfg.ChemicalService = service.NewChemicalService(db.ChemicalsRepo, db.RegulationsRepo, onChange)
		routerCfg.RegulationService = service.NewRegulationService(db.RegulationsRepo, db.ChemicalsRepo, onChange)
		components.Lookup = lookup
	}

	components.Config = routerCfg
	return components
}

// Stop drains the activity queue and stops the caches and the limiter.
func (r *RouterComponents) Stop() {
	if r.Config.Activity != nil {
		r.Config.Activity.Close()
	}
	if r.Config.Limiter != nil {
		r.Config.Limiter.Stop()
	}
	if r.Config.Idempotency != nil {
		r.Config.Idempotency.Stop()
	}
	if r.Lookup != nil {
		r.Lookup.Stop()
	}
}
