package http

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/middleware"
	"github.com/guttosm/compliance-track/internal/service"
)

// AuthRoutes registers the account endpoints and builds the authenticated group.
type AuthRoutes struct {
	handler  *AuthHandler
	identity service.IdentityProvider
}

// NewAuthRoutes creates AuthRoutes over identity.
func NewAuthRoutes(identity service.IdentityProvider) *AuthRoutes {
	return &AuthRoutes{handler: NewAuthHandler(identity), identity: identity}
}

// RegisterPublicRoutes registers login, register and refresh.
func (r *AuthRoutes) RegisterPublicRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/login", r.handler.Login)
	auth.POST("/register", r.handler.Register)
	auth.POST("/refresh", r.handler.Refresh)
}

// RegisterProtectedRoutes registers logout and me on a group returned by Protected.
func (r *AuthRoutes) RegisterProtectedRoutes(protected *gin.RouterGroup, _ *RouterConfig) {
	protected.POST("/auth/logout", r.handler.Logout)
	protected.GET("/auth/me", r.handler.Me)
}

// Protected returns a group that requires a bearer token. A non-nil limiter also limits
// each caller.
func (r *AuthRoutes) Protected(rg *gin.RouterGroup, limiter *middleware.Limiter) *gin.RouterGroup {
	protected := rg.Group("", middleware.Authenticate(r.identity))
	if limiter != nil {
		protected.Use(limiter.PerCaller())
	}
	return protected
}
