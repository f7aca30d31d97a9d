package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// localOrigins are allowed when no origin is configured.
var localOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// CORS allows browser calls from origins, with credentials. Preflight results are cached for a day.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = localOrigins
	}
	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin", "Accept", "Accept-Language", "Content-Type", "Authorization",
			APIKeyHeader, IdempotencyKeyHeader, RequestIDHeader,
		},
		ExposeHeaders:    []string{RequestIDHeader, "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	})
}
