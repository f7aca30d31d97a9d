package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/repository"
)

// AuthService signs users in and out and manages their tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*dto.TokenPair, *model.User, error)
	Register(ctx context.Context, req dto.Registration) (*dto.TokenPair, *model.User, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (*dto.Claims, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
}

// Accounts implements AuthService with bcrypt password hashes and a TokenIssuer.
type Accounts struct {
	users  repository.UsersRepositoryInterface
	roles  repository.RolesRepositoryInterface
	tokens *TokenIssuer
}

// NewAccounts creates the account service.
func NewAccounts(users repository.UsersRepositoryInterface, roles repository.RolesRepositoryInterface, tokens *TokenIssuer) *Accounts {
	return &Accounts{users: users, roles: roles, tokens: tokens}
}

// Login checks the password and issues a fresh token pair. Earlier refresh tokens of the
// user stop working.
func (a *Accounts) Login(ctx context.Context, email, password string) (*dto.TokenPair, *model.User, error) {
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	// compare against a dummy hash so unknown emails cost the same as wrong passwords
	hash := []byte(dummyHash)
	if user != nil {
		hash = []byte(user.Password)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil || user == nil || !user.Active {
		return nil, nil, ErrInvalidCredentials
	}

	if err := a.tokens.ForgetUser(ctx, user.ID); err != nil {
		return nil, nil, fmt.Errorf("drop previous refresh tokens: %w", err)
	}
	pair, err := a.tokens.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Register creates an active account holding the default user role.
func (a *Accounts) Register(ctx context.Context, req dto.Registration) (*dto.TokenPair, *model.User, error) {
	role, err := a.roles.FindByName(ctx, model.RoleUser)
	if err != nil {
		return nil, nil, fmt.Errorf("find %q role: %w", model.RoleUser, err)
	}
	if role == nil {
		return nil, nil, fmt.Errorf("%w: role %q is not seeded", ErrAccountSetup, model.RoleUser)
	}

	user, err := a.createUser(ctx, req, []string{role.ID.Hex()})
	if err != nil {
		return nil, nil, err
	}
	pair, err := a.tokens.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// createUser hashes the password and stores the account. A taken email or username
// returns ErrUserExists.
func (a *Accounts) createUser(ctx context.Context, req dto.Registration, roleIDs []string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Email:    req.Email,
		Username: req.Username,
		Password: string(hash),
		Name:     req.Name,
		Roles:    roleIDs,
		Active:   true,
	}
	if err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Refresh exchanges a refresh token for a new pair. The old refresh token is deleted.
func (a *Accounts) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	claims, err := a.tokens.ParseRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := a.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !user.Active {
		return nil, ErrInvalidToken
	}

	if err := a.tokens.Forget(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("drop refresh token: %w", err)
	}
	return a.tokens.Issue(ctx, user)
}

func (a *Accounts) Authenticate(ctx context.Context, accessToken string) (*dto.Claims, error) {
	return a.tokens.ParseAccess(ctx, accessToken)
}

// Logout revokes the access token and deletes the refresh token. Either may be empty.
// Both are attempted even when the first fails.
func (a *Accounts) Logout(ctx context.Context, accessToken, refreshToken string) error {
	var errs []error
	if accessToken != "" {
		if err := a.tokens.Revoke(ctx, accessToken); err != nil {
			errs = append(errs, fmt.Errorf("revoke access token: %w", err))
		}
	}
	if refreshToken != "" {
		if err := a.tokens.Forget(ctx, refreshToken); err != nil {
			errs = append(errs, fmt.Errorf("drop refresh token: %w", err))
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		log.Warn().Err(err).Msg("logout incomplete")
	}
	return err
}

// EnsureAdmin creates an active admin account unless the email is already registered.
// It reports whether an account was created.
func (a *Accounts) EnsureAdmin(ctx context.Context, req dto.Registration) (bool, error) {
	existing, err := a.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return false, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	var roleIDs []string
	for _, name := range []string{model.RoleAdmin, model.RoleUser} {
		role, err := a.roles.FindByName(ctx, name)
		if err != nil {
			return false, fmt.Errorf("find %q role: %w", name, err)
		}
		if role == nil {
			return false, fmt.Errorf("%w: role %q is not seeded", ErrAccountSetup, name)
		}
		roleIDs = append(roleIDs, role.ID.Hex())
	}

	if _, err := a.createUser(ctx, req, roleIDs); err != nil {
		return false, err
	}
	return true, nil
}

// dummyHash is the bcrypt hash of a random string nobody knows.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3jJ9/0x9xkC1Ik5b5xkbCjS"
