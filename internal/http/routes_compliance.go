package http

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/middleware"
)

// ComplianceRoutes handles calculation, catalog and admin route registration.
type ComplianceRoutes struct {
	calculations *CalculationHandler
	sessions     *SessionHandler
	catalog      *CatalogHandler
	admin        *AdminHandler
}

// NewComplianceRoutes creates the route handlers from the router configuration.
// Catalog routes need both catalog services; admin routes also need the history service.
func NewComplianceRoutes(cfg *RouterConfig) *ComplianceRoutes {
	r := &ComplianceRoutes{
		calculations: NewCalculationHandler(cfg.Estimator, cfg.RegulationService),
	}
	if cfg.SessionStore != nil {
		r.sessions = NewSessionHandler(cfg.SessionStore, cfg.ChemicalService, cfg.RegulationService)
	}
	if cfg.ChemicalService != nil && cfg.RegulationService != nil {
		r.catalog = NewCatalogHandler(cfg.ChemicalService, cfg.RegulationService, cfg.SubstanceLookup)
		if cfg.HistoryService != nil {
			r.admin = NewAdminHandler(cfg.ChemicalService, cfg.RegulationService, cfg.HistoryService)
		}
	}
	return r
}

// RegisterPublicRoutes registers calculation and catalog read routes (when auth is disabled).
// Admin routes are never public.
func (r *ComplianceRoutes) RegisterPublicRoutes(rg *gin.RouterGroup) {
	r.registerCalculations(rg, nil)
	r.registerSessions(rg, nil)
	r.registerCatalog(rg, nil, nil)
}

// RegisterProtectedRoutes registers every route behind a permission check. Administrators
// pass the admin route checks even when their role lacks the write permission.
func (r *ComplianceRoutes) RegisterProtectedRoutes(protected *gin.RouterGroup, cfg *RouterConfig) {
	user := func(permission string) []gin.HandlerFunc {
		return []gin.HandlerFunc{middleware.RequirePermission(permission, nil)}
	}
	admin := func(permission string) []gin.HandlerFunc {
		return []gin.HandlerFunc{middleware.RequirePermission(permission, cfg.IdentityProvider)}
	}

	calc := user(model.PermCalculationsWrite)
	r.registerCalculations(protected, calc)
	r.registerSessions(protected, calc)
	r.registerCatalog(protected, user(model.PermChemicalsRead), user(model.PermRegulationsRead))
	r.registerAdmin(protected,
		admin(model.PermChemicalsWrite),
		admin(model.PermRegulationsWrite),
		admin(model.PermHistoryRead),
	)
}

// with prepends the guard chain to a handler.
func with(chain []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, h)
}

func (r *ComplianceRoutes) registerCalculations(rg *gin.RouterGroup, chain []gin.HandlerFunc) {
	calculations := rg.Group("/calculations")
	calculations.POST("", with(chain, r.calculations.Calculate)...)
	calculations.POST("/readiness", with(chain, r.calculations.Readiness)...)
}

func (r *ComplianceRoutes) registerSessions(rg *gin.RouterGroup, chain []gin.HandlerFunc) {
	if r.sessions == nil {
		return
	}
	h := r.sessions
	sessions := rg.Group("/sessions", chain...)
	{
		sessions.POST("", h.Create)
		sessions.GET("/:id", h.Get)
		sessions.DELETE("/:id", h.Delete)
		sessions.PUT("/:id/case", h.SetCase)
		sessions.PATCH("/:id/parameters", h.UpdateParameters)
		sessions.POST("/:id/substances", h.AddSubstance)
		sessions.PATCH("/:id/substances/:substanceId", h.UpdateSubstance)
		sessions.DELETE("/:id/substances/:substanceId", h.RemoveSubstance)
		sessions.PUT("/:id/substances/:substanceId/reference", h.SelectReference)
		sessions.PUT("/:id/columns", h.SetColumns)
		sessions.GET("/:id/readiness", h.Readiness)
		sessions.POST("/:id/calculate", h.Calculate)
		sessions.GET("/:id/results", h.Results)
		sessions.GET("/:id/export", h.Export)
	}
}

func (r *ComplianceRoutes) registerCatalog(rg *gin.RouterGroup, chemicalsRead, regulationsRead []gin.HandlerFunc) {
	if r.catalog == nil {
		return
	}
	h := r.catalog

	rg.GET("/substances", with(chemicalsRead, h.Lookup)...)

	chemicals := rg.Group("/chemicals", chemicalsRead...)
	chemicals.GET("", h.SearchChemicals)
	chemicals.GET("/:id", h.GetChemical)

	regulations := rg.Group("/regulations", regulationsRead...)
	regulations.GET("", h.ListRegulations)
	regulations.GET("/by-country", h.RegulationsByCountry)
	regulations.GET("/featured", h.FeaturedRegulations)
	regulations.GET("/:id", h.GetRegulation)
	regulations.GET("/:id/chemicals", with(chemicalsRead, h.RegulationChemicals)...)
}

func (r *ComplianceRoutes) registerAdmin(rg *gin.RouterGroup, chemicalsWrite, regulationsWrite, historyRead []gin.HandlerFunc) {
	if r.admin == nil {
		return
	}
	h := r.admin
	admin := rg.Group("/admin")

	chemicals := admin.Group("/chemicals", chemicalsWrite...)
	chemicals.POST("", h.CreateChemical)
	chemicals.PATCH("/:id", h.UpdateChemical)
	chemicals.DELETE("/:id", h.DeleteChemical)
	chemicals.PUT("/:id/limits/:regulationId", h.SetLimit)
	chemicals.DELETE("/:id/limits/:regulationId", h.RemoveLimit)

	regulations := admin.Group("/regulations", regulationsWrite...)
	regulations.POST("", h.CreateRegulation)
	regulations.PATCH("/:id", h.UpdateRegulation)
	regulations.DELETE("/:id", h.DeleteRegulation)
	regulations.PUT("/:id/featured", h.FeatureRegulation)

	history := admin.Group("/history", historyRead...)
	history.GET("", h.History)
	history.GET("/export", h.ExportHistory)
}
