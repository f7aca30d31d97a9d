package service

import (
	"context"

	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/domain/model"
)

// IdentityProvider answers who the caller is and what it may do.
type IdentityProvider interface {
	Login(ctx context.Context, email, password string) (*dto.TokenPair, *model.Identity, error)
	Register(ctx context.Context, req dto.Registration) (*dto.TokenPair, *model.Identity, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Resolve(ctx context.Context, accessToken string) (*model.Identity, error)
	IsAdmin(identity *model.Identity) bool
}

// RoleResolver turns role ids into grants.
type RoleResolver interface {
	Resolve(ctx context.Context, roleIDs []string) (Grants, error)
}

// TokenIdentityProvider implements IdentityProvider on top of an AuthService.
type TokenIdentityProvider struct {
	auth   AuthService
	access RoleResolver
}

// NewIdentityProvider creates an identity provider. Without a resolver identities carry
// no roles or permissions.
func NewIdentityProvider(auth AuthService, access RoleResolver) *TokenIdentityProvider {
	return &TokenIdentityProvider{auth: auth, access: access}
}

func (p *TokenIdentityProvider) Login(ctx context.Context, email, password string) (*dto.TokenPair, *model.Identity, error) {
	pair, user, err := p.auth.Login(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	identity, err := p.identify(ctx, userClaims(user))
	if err != nil {
		return nil, nil, err
	}
	return pair, identity, nil
}

func (p *TokenIdentityProvider) Register(ctx context.Context, req dto.Registration) (*dto.TokenPair, *model.Identity, error) {
	pair, user, err := p.auth.Register(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	identity, err := p.identify(ctx, userClaims(user))
	if err != nil {
		return nil, nil, err
	}
	return pair, identity, nil
}

func (p *TokenIdentityProvider) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	return p.auth.Refresh(ctx, refreshToken)
}

func (p *TokenIdentityProvider) Logout(ctx context.Context, accessToken, refreshToken string) error {
	return p.auth.Logout(ctx, accessToken, refreshToken)
}

// Resolve authenticates the access token and loads the caller's grants.
func (p *TokenIdentityProvider) Resolve(ctx context.Context, accessToken string) (*model.Identity, error) {
	claims, err := p.auth.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return p.identify(ctx, claims)
}

// IsAdmin reports whether the identity holds the admin role.
func (p *TokenIdentityProvider) IsAdmin(identity *model.Identity) bool {
	return identity.HasRole(model.RoleAdmin)
}

func (p *TokenIdentityProvider) identify(ctx context.Context, claims *dto.Claims) (*model.Identity, error) {
	identity := &model.Identity{
		UserID: claims.UserID.Hex(),
		Email:  claims.Email,
		Name:   claims.Name,
		Roles:  []string{},
	}
	if p.access == nil {
		return identity, nil
	}
	grants, err := p.access.Resolve(ctx, claims.Roles)
	if err != nil {
		return nil, err
	}
	identity.Roles, identity.Permissions = grants.Roles, grants.Permissions
	return identity, nil
}

func userClaims(u *model.User) *dto.Claims {
	return &dto.Claims{UserID: u.ID, Email: u.Email, Name: u.Name, Roles: u.Roles}
}
