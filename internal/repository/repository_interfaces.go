package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/compliance-track/internal/domain/model"
)

// ChemicalsRepositoryInterface defines the interface for chemical catalog operations.
type ChemicalsRepositoryInterface interface {
	Create(ctx context.Context, chemical *model.Chemical) error
	CreateMany(ctx context.Context, chemicals []*model.Chemical) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Chemical, error)
	Update(ctx context.Context, chemical *model.Chemical) error
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	RemoveRegulationLimits(ctx context.Context, id model.RegulationID) (int64, error)
	Search(ctx context.Context, filter model.ChemicalFilter) ([]model.Chemical, error)
	Count(ctx context.Context, filter model.ChemicalFilter) (int64, error)
}

// RegulationsRepositoryInterface defines the interface for regulation operations.
type RegulationsRepositoryInterface interface {
	Create(ctx context.Context, regulation *model.Regulation) error
	CreateMany(ctx context.Context, regulations []*model.Regulation) error
	FindByID(ctx context.Context, id model.RegulationID) (*model.Regulation, error)
	FindByIDs(ctx context.Context, ids []model.RegulationID) ([]model.Regulation, error)
	Update(ctx context.Context, regulation *model.Regulation) error
	Delete(ctx context.Context, id model.RegulationID) (bool, error)
	List(ctx context.Context, filter model.RegulationFilter) ([]model.Regulation, error)
}

// LogsRepositoryInterface appends to and reads the activity history.
type LogsRepositoryInterface interface {
	Append(ctx context.Context, entries ...*model.LogEntry) error
	Find(ctx context.Context, q model.LogQueryOptions) ([]model.LogEntry, error)
	Count(ctx context.Context, q model.LogQueryOptions) (int64, error)
}

// UsersRepositoryInterface reads and creates accounts.
type UsersRepositoryInterface interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// RolesRepositoryInterface seeds and resolves roles.
type RolesRepositoryInterface interface {
	Ensure(ctx context.Context, role *model.Role) error
	FindByName(ctx context.Context, name string) (*model.Role, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Role, error)
}

// PermissionsRepositoryInterface seeds and resolves permissions.
type PermissionsRepositoryInterface interface {
	Ensure(ctx context.Context, permission *model.Permission) error
	FindByIDs(ctx context.Context, ids []string) ([]*model.Permission, error)
}

// TokensRepositoryInterface stores refresh tokens and revoked access tokens.
type TokensRepositoryInterface interface {
	Create(ctx context.Context, token *model.Token) error
	FindByToken(ctx context.Context, raw string) (*model.Token, error)
	IsRevoked(ctx context.Context, raw string) (bool, error)
	DeleteByToken(ctx context.Context, raw string) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID, kind model.TokenKind) error
}
