// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/service"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

func expect[M interface {
	Test(mock.TestingT)
	AssertExpectations(mock.TestingT) bool
}](t cleanupT, m M) M {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func ptr[T any](args mock.Arguments, i int) *T {
	if v := args.Get(i); v != nil {
		return v.(*T)
	}
	return nil
}

type MockUsersRepository struct{ mock.Mock }

func NewMockUsersRepository(t cleanupT) *MockUsersRepository {
	return expect(t, &MockUsersRepository{})
}

func (m *MockUsersRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUsersRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	args := m.Called(ctx, id)
	return ptr[model.User](args, 0), args.Error(1)
}

func (m *MockUsersRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	return ptr[model.User](args, 0), args.Error(1)
}

type MockRolesRepository struct{ mock.Mock }

func NewMockRolesRepository(t cleanupT) *MockRolesRepository {
	return expect(t, &MockRolesRepository{})
}

func (m *MockRolesRepository) Ensure(ctx context.Context, role *model.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *MockRolesRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	args := m.Called(ctx, name)
	return ptr[model.Role](args, 0), args.Error(1)
}

func (m *MockRolesRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Role, error) {
	args := m.Called(ctx, ids)
	roles, _ := args.Get(0).([]*model.Role)
	return roles, args.Error(1)
}

type MockPermissionsRepository struct{ mock.Mock }

func NewMockPermissionsRepository(t cleanupT) *MockPermissionsRepository {
	return expect(t, &MockPermissionsRepository{})
}

func (m *MockPermissionsRepository) Ensure(ctx context.Context, permission *model.Permission) error {
	return m.Called(ctx, permission).Error(0)
}

func (m *MockPermissionsRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Permission, error) {
	args := m.Called(ctx, ids)
	perms, _ := args.Get(0).([]*model.Permission)
	return perms, args.Error(1)
}

type MockTokensRepository struct{ mock.Mock }

func NewMockTokensRepository(t cleanupT) *MockTokensRepository {
	return expect(t, &MockTokensRepository{})
}

func (m *MockTokensRepository) Create(ctx context.Context, token *model.Token) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockTokensRepository) FindByToken(ctx context.Context, raw string) (*model.Token, error) {
	args := m.Called(ctx, raw)
	return ptr[model.Token](args, 0), args.Error(1)
}

func (m *MockTokensRepository) IsRevoked(ctx context.Context, raw string) (bool, error) {
	args := m.Called(ctx, raw)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokensRepository) DeleteByToken(ctx context.Context, raw string) error {
	return m.Called(ctx, raw).Error(0)
}

func (m *MockTokensRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID, kind model.TokenKind) error {
	return m.Called(ctx, userID, kind).Error(0)
}

type MockAuthService struct{ mock.Mock }

func NewMockAuthService(t cleanupT) *MockAuthService {
	return expect(t, &MockAuthService{})
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*dto.TokenPair, *model.User, error) {
	args := m.Called(ctx, email, password)
	return ptr[dto.TokenPair](args, 0), ptr[model.User](args, 1), args.Error(2)
}

func (m *MockAuthService) Register(ctx context.Context, req dto.Registration) (*dto.TokenPair, *model.User, error) {
	args := m.Called(ctx, req)
	return ptr[dto.TokenPair](args, 0), ptr[model.User](args, 1), args.Error(2)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	return ptr[dto.TokenPair](args, 0), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, accessToken string) (*dto.Claims, error) {
	args := m.Called(ctx, accessToken)
	return ptr[dto.Claims](args, 0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	return m.Called(ctx, accessToken, refreshToken).Error(0)
}

type MockIdentityProvider struct{ mock.Mock }

func NewMockIdentityProvider(t cleanupT) *MockIdentityProvider {
	return expect(t, &MockIdentityProvider{})
}

func (m *MockIdentityProvider) Login(ctx context.Context, email, password string) (*dto.TokenPair, *model.Identity, error) {
	args := m.Called(ctx, email, password)
	return ptr[dto.TokenPair](args, 0), ptr[model.Identity](args, 1), args.Error(2)
}

func (m *MockIdentityProvider) Register(ctx context.Context, req dto.Registration) (*dto.TokenPair, *model.Identity, error) {
	args := m.Called(ctx, req)
	return ptr[dto.TokenPair](args, 0), ptr[model.Identity](args, 1), args.Error(2)
}

func (m *MockIdentityProvider) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	return ptr[dto.TokenPair](args, 0), args.Error(1)
}

func (m *MockIdentityProvider) Logout(ctx context.Context, accessToken, refreshToken string) error {
	return m.Called(ctx, accessToken, refreshToken).Error(0)
}

func (m *MockIdentityProvider) Resolve(ctx context.Context, accessToken string) (*model.Identity, error) {
	args := m.Called(ctx, accessToken)
	return ptr[model.Identity](args, 0), args.Error(1)
}

// IsAdmin answers from the identity's roles.
func (m *MockIdentityProvider) IsAdmin(identity *model.Identity) bool {
	return identity.HasRole(model.RoleAdmin)
}

var (
	_ service.AuthService      = (*MockAuthService)(nil)
	_ service.IdentityProvider = (*MockIdentityProvider)(nil)
)
