package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/i18n"
	"github.com/guttosm/compliance-track/internal/middleware"
	"github.com/guttosm/compliance-track/internal/service"
)

// AuthHandler serves sign in, registration, token refresh and sign out.
type AuthHandler struct {
	identity service.IdentityProvider
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(identity service.IdentityProvider) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// Login handles POST /api/v1/auth/login requests.
//
// @Summary      Sign in
// @Description  Exchanges email and password for an access and refresh token. Earlier refresh tokens of the user are discarded.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body dto.Credentials true "Credentials"
// @Success      200 {object} dto.SuccessResponse{data=dto.SessionResponse} "Tokens and caller"
// @Failure      400 {object} dto.ErrorResponse "Bad request"
// @Failure      401 {object} dto.ErrorResponse "Invalid email or password"
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	req, ok := bindAndValidate[dto.Credentials](c)
	if !ok {
		return
	}

	pair, identity, err := h.identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.AuditFailure(c, model.ActionLogin, "Login rejected", err, map[string]any{"email": req.Email})
		}
		respondError(c, err)
		return
	}

	middleware.SetIdentity(c, identity)
	middleware.Audit(c, model.ActionLogin, "User logged in", nil)
	NewResponseBuilder(c).SuccessOK(h.session(pair, identity))
}

// Register handles POST /api/v1/auth/register requests.
//
// @Summary      Create an account
// @Description  Creates a user holding the standard role and signs it in.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body dto.Registration true "New account"
// @Success      201 {object} dto.SuccessResponse{data=dto.SessionResponse} "Tokens and caller"
// @Failure      400 {object} dto.ErrorResponse "Bad request"
// @Failure      409 {object} dto.ErrorResponse "Email or username taken"
// @Failure      503 {object} dto.ErrorResponse "Roles are not seeded"
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	req, ok := bindAndValidate[dto.Registration](c)
	if !ok {
		return
	}

	pair, identity, err := h.identity.Register(c.Request.Context(), *req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			middleware.AuditFailure(c, model.ActionRegister, "Registration rejected", err, map[string]any{
				"email":    req.Email,
				"username": req.Username,
			})
		}
		respondError(c, err)
		return
	}

	middleware.SetIdentity(c, identity)
	middleware.Audit(c, model.ActionRegister, "User registered", map[string]any{"username": req.Username})
	NewResponseBuilder(c).SuccessCreated(h.session(pair, identity))
}

// Refresh handles POST /api/v1/auth/refresh requests.
//
// @Summary      Renew tokens
// @Description  Exchanges a refresh token for a new pair. The presented refresh token stops working.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh token"
// @Success      200 {object} dto.SuccessResponse{data=dto.SessionResponse} "New tokens"
// @Failure      400 {object} dto.ErrorResponse "Bad request"
// @Failure      401 {object} dto.ErrorResponse "Unknown, used or expired refresh token"
// @Router       /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	req, ok := bindAndValidate[dto.RefreshRequest](c)
	if !ok {
		return
	}

	pair, err := h.identity.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(dto.SessionResponse{TokenPair: *pair})
}

// Logout handles POST /api/v1/auth/logout requests.
//
// @Summary      Sign out
// @Description  Revokes the access token until it expires. A refresh token in the body is discarded too.
// @Tags         Auth
// @Accept       json
// @Param        request body dto.RefreshRequest false "Refresh token to discard"
// @Success      204 "Signed out"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Security     BearerAuth
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	access, _ := middleware.BearerToken(c)

	var body dto.RefreshRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
			return
		}
	}

	if err := h.identity.Logout(c.Request.Context(), access, body.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	middleware.Audit(c, model.ActionLogout, "User logged out", nil)
	c.Status(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me requests.
//
// @Summary      Current caller
// @Tags         Auth
// @Produce      json
// @Success      200 {object} dto.SuccessResponse{data=dto.MeResponse} "Caller with roles and permissions"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Security     BearerAuth
// @Router       /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		NewResponseBuilder(c).Error(http.StatusUnauthorized, i18n.ErrKeyUnauthorized, nil)
		return
	}
	NewResponseBuilder(c).SuccessOK(dto.MeResponse{User: *identity, IsAdmin: h.identity.IsAdmin(identity)})
}

func (h *AuthHandler) session(pair *dto.TokenPair, identity *model.Identity) dto.SessionResponse {
	return dto.SessionResponse{TokenPair: *pair, User: identity, IsAdmin: h.identity.IsAdmin(identity)}
}
