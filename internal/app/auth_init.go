package app

import (
	"context"
	"time"

	"github.com/guttosm/compliance-track/config"
	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/service"
	"github.com/rs/zerolog/log"
)

// AccountComponents serves sign in with bearer tokens.
type AccountComponents struct {
	Accounts *service.Accounts
	Access   *service.Access
	Provider service.IdentityProvider
}

// InitializeAccounts seeds the user and admin roles and builds the identity provider.
// Without a database, or with auth disabled, it returns nil and the API falls back to
// API keys.
func InitializeAccounts(db *DatabaseComponents, cfg config.AuthConfig) *AccountComponents {
	if db == nil || !cfg.Enabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := service.SeedAccess(ctx, db.Roles, db.Permissions); err != nil {
		log.Error().Err(err).Msg("roles not seeded, accounts disabled")
		return nil
	}

	accounts := service.NewAccounts(db.Users, db.Roles, service.NewTokenIssuer(db.Tokens, cfg))
	access := service.NewAccess(db.Roles, db.Permissions, cfg.GrantsCacheTTL)

	if cfg.BootstrapAdmin() {
		created, err := accounts.EnsureAdmin(ctx, dto.Registration{
			Email:    cfg.AdminEmail,
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
			Name:     "Administrator",
		})
		switch {
		case err != nil:
			log.Warn().Err(err).Str("email", cfg.AdminEmail).Msg("admin account not ensured")
		case created:
			log.Info().Str("email", cfg.AdminEmail).Msg("admin account created")
		}
	}

	return &AccountComponents{
		Accounts: accounts,
		Access:   access,
		Provider: service.NewIdentityProvider(accounts, access),
	}
}

// Stop releases the grants cache.
func (a *AccountComponents) Stop() {
	if a != nil && a.Access != nil {
		a.Access.Stop()
	}
}
