package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/compliance-track/internal/metrics"
	"github.com/guttosm/compliance-track/internal/middleware"
	"github.com/guttosm/compliance-track/internal/service"
)

// RouterConfig wires the router. Nil services leave their routes out; nil middleware
// dependencies (Limiter, Idempotency, Activity) switch that middleware off.
type RouterConfig struct {
	RequestTimeout time.Duration
	// APIKeys guard the API when it runs without accounts.
	APIKeys     map[string]bool
	EnableAuth  bool
	CORSOrigins []string
	SwaggerUser string
	SwaggerPass string

	Limiter     *middleware.Limiter
	Idempotency *middleware.IdempotencyStore
	Activity    *middleware.ActivityRecorder

	IdentityProvider  service.IdentityProvider
	Estimator         service.MigrationEstimator
	SessionStore      service.SessionStore
	ChemicalService   service.ChemicalService
	RegulationService service.RegulationService
	SubstanceLookup   service.SubstanceLookup
	HistoryService    service.HistoryService
}

// accounts reports whether routes sit behind bearer tokens.
func (cfg *RouterConfig) accounts() bool {
	return cfg.EnableAuth && cfg.IdentityProvider != nil
}

// NewRouter builds the gin engine: infrastructure routes at the root, the API under /api/v1.
func NewRouter(health *HealthHandler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.CORS(cfg.CORSOrigins),
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.Compression(),
		middleware.WithRecorder(cfg.Activity),
		middleware.RequestLogger(),
		middleware.ErrorHandler(),
	)
	if cfg.Limiter != nil {
		router.Use(cfg.Limiter.PerClient())
	}

	health.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	docs := router.Group("/swagger")
	if cfg.SwaggerUser != "" && cfg.SwaggerPass != "" {
		docs.Use(gin.BasicAuth(gin.Accounts{cfg.SwaggerUser: cfg.SwaggerPass}))
	}
	docs.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	if cfg.RequestTimeout > 0 {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	routes := NewComplianceRoutes(&cfg)
	if !cfg.accounts() {
		if cfg.EnableAuth {
			api.Use(middleware.RequireAPIKey(cfg.APIKeys))
		}
		routes.RegisterPublicRoutes(api)
		return router
	}

	auth := NewAuthRoutes(cfg.IdentityProvider)
	auth.RegisterPublicRoutes(api)

	protected := auth.Protected(api, cfg.Limiter)
	auth.RegisterProtectedRoutes(protected, &cfg)
	routes.RegisterProtectedRoutes(protected, &cfg)
	return router
}
