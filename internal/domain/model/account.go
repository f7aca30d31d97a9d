package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Permission keys have the form "resource:action".
const (
	PermCalculationsWrite = "calculations:write"
	PermChemicalsRead     = "chemicals:read"
	PermChemicalsWrite    = "chemicals:write"
	PermRegulationsRead   = "regulations:read"
	PermRegulationsWrite  = "regulations:write"
	PermHistoryRead       = "history:read"
)

// PermissionKey joins a resource and an action.
func PermissionKey(resource, action string) string {
	return resource + ":" + action
}

// User is an account that can sign in. Roles holds role ids.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Username  string             `bson:"username" json:"username"`
	Password  string             `bson:"password" json:"-"`
	Name      string             `bson:"name" json:"name"`
	Roles     []string           `bson:"roles" json:"roles"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Role groups permissions. Permissions holds permission ids.
type Role struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Permissions []string           `bson:"permissions" json:"permissions"`
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Permission allows one action on one resource.
type Permission struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Resource    string             `bson:"resource" json:"resource"`
	Action      string             `bson:"action" json:"action"`
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Key returns the "resource:action" form of the permission.
func (p Permission) Key() string {
	return PermissionKey(p.Resource, p.Action)
}

// TokenKind tells stored refresh tokens from revoked access tokens.
type TokenKind string

const (
	TokenRefresh TokenKind = "refresh"
	TokenRevoked TokenKind = "blacklist"
)

// Token is a stored refresh token or a revoked access token. Documents expire at ExpiresAt.
type Token struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Token     string             `bson:"token" json:"-"`
	Kind      TokenKind          `bson:"type" json:"type"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Usable reports whether a refresh token can still be exchanged at now.
func (t *Token) Usable(now time.Time) bool {
	return t != nil && t.Kind == TokenRefresh && now.Before(t.ExpiresAt)
}
