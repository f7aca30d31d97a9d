package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/middleware"
	"github.com/guttosm/compliance-track/internal/mocks"
	"github.com/guttosm/compliance-track/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewComplianceRoutes(t *testing.T) {
	t.Run("catalog and admin handlers need their services", func(t *testing.T) {
		routes := NewComplianceRoutes(&RouterConfig{})

		assert.NotNil(t, routes.calculations)
		assert.Nil(t, routes.sessions)
		assert.Nil(t, routes.catalog)
		assert.Nil(t, routes.admin)
	})

	t.Run("admin handler needs the history", func(t *testing.T) {
		routes := NewComplianceRoutes(&RouterConfig{
			SessionStore:      sessionStore(t),
			ChemicalService:   mocks.NewMockChemicalService(t),
			RegulationService: mocks.NewMockRegulationService(t),
		})

		assert.NotNil(t, routes.sessions)
		assert.NotNil(t, routes.catalog)
		assert.Nil(t, routes.admin)
	})
}

func TestComplianceRoutes_RegisterPublicRoutes(t *testing.T) {
	routes := NewComplianceRoutes(&RouterConfig{
		SessionStore:      sessionStore(t),
		ChemicalService:   mocks.NewMockChemicalService(t),
		RegulationService: mocks.NewMockRegulationService(t),
		HistoryService:    mocks.NewMockHistoryService(t),
	})

	router := gin.New()
	routes.RegisterPublicRoutes(router.Group("/api/v1"))

	tests := []struct {
		method     string
		path       string
		registered bool
	}{
		{http.MethodPost, "/api/v1/calculations", true},
		{http.MethodPost, "/api/v1/sessions", true},
		{http.MethodGet, "/api/v1/substances", true},
		{http.MethodGet, "/api/v1/admin/history", false},
		{http.MethodPost, "/api/v1/admin/chemicals", false},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if tt.registered {
				assert.NotEqual(t, http.StatusNotFound, w.Code)
			} else {
				assert.Equal(t, http.StatusNotFound, w.Code)
			}
		})
	}
}

// TestComplianceRoutes_Permissions checks which grant guards which route. Handlers that
// pass the guard answer with whatever their mocks give; only 401 and 403 matter here.
func TestComplianceRoutes_Permissions(t *testing.T) {
	reader := &model.Identity{UserID: "reader", Permissions: []string{model.PermChemicalsRead, model.PermRegulationsRead}}
	calculator := &model.Identity{UserID: "calculator", Permissions: []string{model.PermCalculationsWrite}}
	curator := &model.Identity{UserID: "curator", Permissions: []string{model.PermChemicalsWrite}}
	admin := &model.Identity{UserID: "admin", Roles: []string{model.RoleAdmin}}
	identities := map[string]*model.Identity{"reader": reader, "calculator": calculator, "curator": curator, "admin": admin}

	chemicals := mocks.NewMockChemicalService(t)
	chemicals.On("Search", mock.Anything, mock.Anything).Return(&service.ChemicalPage{}, nil).Maybe()
	chemicals.On("Delete", mock.Anything, mock.Anything).Return(nil, service.ErrChemicalNotFound).Maybe()
	history := mocks.NewMockHistoryService(t)
	history.On("List", mock.Anything, mock.Anything).Return(&service.HistoryPage{}, nil).Maybe()

	cfg := &RouterConfig{
		IdentityProvider:  mocks.NewMockIdentityProvider(t),
		SessionStore:      sessionStore(t),
		ChemicalService:   chemicals,
		RegulationService: mocks.NewMockRegulationService(t),
		HistoryService:    history,
	}
	router := gin.New()
	api := router.Group("/api/v1", func(c *gin.Context) {
		if identity, ok := identities[c.GetHeader("X-Caller")]; ok {
			middleware.SetIdentity(c, identity)
		}
		c.Next()
	})
	NewComplianceRoutes(cfg).RegisterProtectedRoutes(api, cfg)

	tests := []struct {
		caller  string
		method  string
		path    string
		allowed bool
	}{
		{"reader", http.MethodGet, "/api/v1/chemicals", true},
		{"reader", http.MethodPost, "/api/v1/sessions", false},
		{"reader", http.MethodDelete, "/api/v1/admin/chemicals/c-1", false},
		{"calculator", http.MethodPost, "/api/v1/sessions", true},
		{"calculator", http.MethodGet, "/api/v1/chemicals", false},
		{"curator", http.MethodDelete, "/api/v1/admin/chemicals/c-1", true},
		{"curator", http.MethodGet, "/api/v1/admin/history", false},
		{"admin", http.MethodDelete, "/api/v1/admin/chemicals/c-1", true},
		{"admin", http.MethodGet, "/api/v1/admin/history", true},
		{"admin", http.MethodPost, "/api/v1/sessions", false},
	}
	for _, tt := range tests {
		t.Run(tt.caller+" "+tt.method+" "+tt.path, func(t *testing.T) {
			w := doJSONWith(router, tt.method, tt.path, nil, map[string]string{"X-Caller": tt.caller})
			if tt.allowed {
				assert.NotEqual(t, http.StatusForbidden, w.Code)
				assert.NotEqual(t, http.StatusUnauthorized, w.Code)
			} else {
				assert.Equal(t, http.StatusForbidden, w.Code)
			}
		})
	}

	t.Run("anonymous", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/calculations", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthRoutes_Protected(t *testing.T) {
	provider := mocks.NewMockIdentityProvider(t)
	provider.On("Resolve", mock.Anything, "analyst-token").Return(analyst, nil)
	routes := NewAuthRoutes(provider)

	limiter := middleware.NewLimiter(1, time.Minute)
	t.Cleanup(limiter.Stop)

	router := gin.New()
	protected := routes.Protected(router.Group("/api/v1"), limiter)
	protected.GET("/whoami", func(c *gin.Context) {
		identity, _ := middleware.IdentityFromContext(c)
		c.String(http.StatusOK, identity.Email)
	})

	bearer := map[string]string{"Authorization": "Bearer analyst-token"}
	w := doJSONWith(router, http.MethodGet, "/api/v1/whoami", nil, bearer)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, analyst.Email, w.Body.String())

	assert.Equal(t, http.StatusTooManyRequests, doJSONWith(router, http.MethodGet, "/api/v1/whoami", nil, bearer).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(router, http.MethodGet, "/api/v1/whoami", nil).Code)
}
