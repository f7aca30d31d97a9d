//go:build !integration

package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/mocks"
	"github.com/guttosm/compliance-track/internal/repository"
	"github.com/guttosm/compliance-track/internal/service"
)

type accountsFixture struct {
	users  *mocks.MockUsersRepository
	roles  *mocks.MockRolesRepository
	tokens *memoryTokens
	svc    *service.Accounts
}

func newAccounts(t *testing.T) accountsFixture {
	f := accountsFixture{
		users:  mocks.NewMockUsersRepository(t),
		roles:  mocks.NewMockRolesRepository(t),
		tokens: newMemoryTokens(),
	}
	f.svc = service.NewAccounts(f.users, f.roles, service.NewTokenIssuer(f.tokens, testAuthConfig()))
	return f
}

func withPassword(t *testing.T, u *model.User, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u.Password = string(hash)
	return u
}

// assignID mimics the repository filling in the id on insert.
func assignID(args mock.Arguments) {
	args.Get(1).(*model.User).ID = primitive.NewObjectID()
}

func TestAccounts_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a pair and drops older refresh tokens", func(t *testing.T) {
		f := newAccounts(t)
		user := withPassword(t, analyst(), "s3cret-pass")
		f.users.On("FindByEmail", ctx, user.Email).Return(user, nil).Twice()

		first, _, err := f.svc.Login(ctx, user.Email, "s3cret-pass")
		require.NoError(t, err)
		second, got, err := f.svc.Login(ctx, user.Email, "s3cret-pass")
		require.NoError(t, err)

		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, 1, f.tokens.count(model.TokenRefresh))
		_, err = f.svc.Refresh(ctx, first.RefreshToken)
		assert.ErrorIs(t, err, service.ErrInvalidToken)
		assert.NotEmpty(t, second.AccessToken)
	})

	rejected := []struct {
		name     string
		user     func(t *testing.T) *model.User
		password string
	}{
		{"unknown email", func(*testing.T) *model.User { return nil }, "s3cret-pass"},
		{"wrong password", func(t *testing.T) *model.User { return withPassword(t, analyst(), "s3cret-pass") }, "guess"},
		{"disabled account", func(t *testing.T) *model.User {
			u := withPassword(t, analyst(), "s3cret-pass")
			u.Active = false
			return u
		}, "s3cret-pass"},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			f := newAccounts(t)
			f.users.On("FindByEmail", ctx, "analyst@lab.example").Return(tt.user(t), nil)

			_, _, err := f.svc.Login(ctx, "analyst@lab.example", tt.password)
			assert.ErrorIs(t, err, service.ErrInvalidCredentials)
			assert.Zero(t, f.tokens.count(model.TokenRefresh))
		})
	}

	t.Run("store failure is not a credential error", func(t *testing.T) {
		f := newAccounts(t)
		f.users.On("FindByEmail", ctx, "analyst@lab.example").Return(nil, errors.New("connection reset"))

		_, _, err := f.svc.Login(ctx, "analyst@lab.example", "s3cret-pass")
		require.Error(t, err)
		assert.NotErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestAccounts_Register(t *testing.T) {
	ctx := context.Background()
	req := dto.Registration{Email: "new@lab.example", Username: "newbie", Password: "s3cret-pass", Name: "New Analyst"}
	userRole := &model.Role{ID: primitive.NewObjectID(), Name: model.RoleUser, Active: true}

	t.Run("creates an active user with the user role", func(t *testing.T) {
		f := newAccounts(t)
		f.roles.On("FindByName", ctx, model.RoleUser).Return(userRole, nil)
		f.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Active && u.Email == req.Email &&
				bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) == nil &&
				assert.ObjectsAreEqual([]string{userRole.ID.Hex()}, u.Roles)
		})).Run(assignID).Return(nil)

		pair, user, err := f.svc.Register(ctx, req)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.False(t, user.ID.IsZero())
	})

	t.Run("taken email or username", func(t *testing.T) {
		f := newAccounts(t)
		f.roles.On("FindByName", ctx, model.RoleUser).Return(userRole, nil)
		f.users.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate)

		_, _, err := f.svc.Register(ctx, req)
		assert.ErrorIs(t, err, service.ErrUserExists)
	})

	t.Run("roles not seeded", func(t *testing.T) {
		f := newAccounts(t)
		f.roles.On("FindByName", ctx, model.RoleUser).Return(nil, nil)

		_, _, err := f.svc.Register(ctx, req)
		assert.ErrorIs(t, err, service.ErrAccountSetup)
	})
}

func TestAccounts_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the refresh token", func(t *testing.T) {
		f := newAccounts(t)
		user := withPassword(t, analyst(), "s3cret-pass")
		f.users.On("FindByEmail", ctx, user.Email).Return(user, nil)
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)

		pair, _, err := f.svc.Login(ctx, user.Email, "s3cret-pass")
		require.NoError(t, err)

		next, err := f.svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		_, err = f.svc.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, service.ErrInvalidToken)
		assert.Equal(t, 1, f.tokens.count(model.TokenRefresh))
	})

	t.Run("disabled since login", func(t *testing.T) {
		f := newAccounts(t)
		user := withPassword(t, analyst(), "s3cret-pass")
		f.users.On("FindByEmail", ctx, user.Email).Return(user, nil)
		pair, _, err := f.svc.Login(ctx, user.Email, "s3cret-pass")
		require.NoError(t, err)

		disabled := *user
		disabled.Active = false
		f.users.On("FindByID", ctx, user.ID).Return(&disabled, nil)

		_, err = f.svc.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		f := newAccounts(t)
		user := withPassword(t, analyst(), "s3cret-pass")
		f.users.On("FindByEmail", ctx, user.Email).Return(user, nil)
		pair, _, err := f.svc.Login(ctx, user.Email, "s3cret-pass")
		require.NoError(t, err)

		_, err = f.svc.Refresh(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	})
}

func TestAccounts_AuthenticateAndLogout(t *testing.T) {
	ctx := context.Background()
	f := newAccounts(t)
	user := withPassword(t, analyst(), "s3cret-pass")
	f.users.On("FindByEmail", ctx, user.Email).Return(user, nil)

	pair, _, err := f.svc.Login(ctx, user.Email, "s3cret-pass")
	require.NoError(t, err)

	claims, err := f.svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	require.NoError(t, f.svc.Logout(ctx, pair.AccessToken, pair.RefreshToken))

	_, err = f.svc.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, service.ErrTokenRevoked)
	assert.Zero(t, f.tokens.count(model.TokenRefresh))

	t.Run("nothing to revoke", func(t *testing.T) {
		assert.NoError(t, f.svc.Logout(ctx, "", ""))
	})

	t.Run("bad access token still drops the refresh token", func(t *testing.T) {
		again, _, err := f.svc.Login(ctx, user.Email, "s3cret-pass")
		require.NoError(t, err)

		err = f.svc.Logout(ctx, "not.a.jwt", again.RefreshToken)
		assert.ErrorIs(t, err, service.ErrInvalidToken)
		assert.Zero(t, f.tokens.count(model.TokenRefresh))
	})
}

func TestAccounts_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	req := dto.Registration{Email: "admin@lab.example", Username: "admin", Password: "s3cret-pass"}
	adminRole := &model.Role{ID: primitive.NewObjectID(), Name: model.RoleAdmin}
	userRole := &model.Role{ID: primitive.NewObjectID(), Name: model.RoleUser}

	t.Run("creates the account with both roles", func(t *testing.T) {
		f := newAccounts(t)
		f.users.On("FindByEmail", ctx, req.Email).Return(nil, nil)
		f.roles.On("FindByName", ctx, model.RoleAdmin).Return(adminRole, nil)
		f.roles.On("FindByName", ctx, model.RoleUser).Return(userRole, nil)
		f.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return assert.ObjectsAreEqual([]string{adminRole.ID.Hex(), userRole.ID.Hex()}, u.Roles)
		})).Return(nil)

		created, err := f.svc.EnsureAdmin(ctx, req)
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("existing email is left alone", func(t *testing.T) {
		f := newAccounts(t)
		f.users.On("FindByEmail", ctx, req.Email).Return(&model.User{Email: req.Email}, nil)

		created, err := f.svc.EnsureAdmin(ctx, req)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("admin role missing", func(t *testing.T) {
		f := newAccounts(t)
		f.users.On("FindByEmail", ctx, req.Email).Return(nil, nil)
		f.roles.On("FindByName", ctx, model.RoleAdmin).Return(nil, nil)

		_, err := f.svc.EnsureAdmin(ctx, req)
		assert.ErrorIs(t, err, service.ErrAccountSetup)
	})
}
