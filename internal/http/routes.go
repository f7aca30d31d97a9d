package http

import (
	"github.com/gin-gonic/gin"
)

// PublicRouteGroup defines routes that don't require authentication.
type PublicRouteGroup interface {
	// RegisterPublicRoutes registers public routes to the given router group.
	RegisterPublicRoutes(rg *gin.RouterGroup)
}

// ProtectedRouteGroup defines routes that require authentication.
type ProtectedRouteGroup interface {
	// RegisterProtectedRoutes registers protected routes to the given router group.
	RegisterProtectedRoutes(rg *gin.RouterGroup, cfg *RouterConfig)
}

// BusinessRoutes is served openly, or behind an API key, when accounts are off and behind
// bearer tokens and permission checks when they are on.
type BusinessRoutes interface {
	PublicRouteGroup
	ProtectedRouteGroup
}

var (
	_ BusinessRoutes      = (*ComplianceRoutes)(nil)
	_ PublicRouteGroup    = (*AuthRoutes)(nil)
	_ ProtectedRouteGroup = (*AuthRoutes)(nil)
)
