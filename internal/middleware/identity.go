package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/i18n"
	"github.com/guttosm/compliance-track/internal/service"
)

// IdentityKey is the gin context key holding the caller's *model.Identity.
const IdentityKey = "identity"

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, bool) {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate resolves the bearer token into an identity and stores it under IdentityKey.
func Authenticate(provider service.IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			abortUnauthorized(c, i18n.ErrKeyTokenRequired)
			return
		}
		token, ok := BearerToken(c)
		if !ok {
			abortUnauthorized(c, i18n.ErrKeyInvalidToken)
			return
		}

		identity, err := provider.Resolve(c.Request.Context(), token)
		switch {
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenRevoked):
			abortUnauthorized(c, i18n.ErrKeyInvalidToken)
			return
		case err != nil:
			_ = c.Error(err)
			abort(c, http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable)
			return
		}

		SetIdentity(c, identity)
		c.Next()
	}
}

// SetIdentity attaches identity to the request, as Authenticate does. Login and register
// use it so their audit entries name the new session's user.
func SetIdentity(c *gin.Context, identity *model.Identity) {
	c.Set(IdentityKey, identity)
}

// IdentityFromContext returns the identity stored by Authenticate, if any.
func IdentityFromContext(c *gin.Context) (*model.Identity, bool) {
	identity, ok := c.Value(IdentityKey).(*model.Identity)
	return identity, ok && identity != nil
}

// RequirePermission lets the request through when the caller holds permission. A non-nil
// admins provider also admits callers it considers administrators.
func RequirePermission(permission string, admins service.IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			abortUnauthorized(c, i18n.ErrKeyUnauthorized)
			return
		}
		if identity.Can(permission) || (admins != nil && admins.IsAdmin(identity)) {
			c.Next()
			return
		}
		abort(c, http.StatusForbidden, i18n.ErrKeyForbidden)
	}
}
