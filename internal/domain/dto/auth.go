package dto

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/validator"
)

// Credentials is the body of the login endpoint.
type Credentials struct {
	Email    string `json:"email" validate:"required,email" example:"analyst@lab.example"`
	Password string `json:"password" validate:"required,min=6" example:"s3cret-pass"`
} // @name Credentials

func (r *Credentials) Validate() error {
	return validator.Struct(r)
}

// Registration is the body of the register endpoint.
type Registration struct {
	Email    string `json:"email" validate:"required,email" example:"analyst@lab.example"`
	Username string `json:"username" validate:"required,min=3,max=30" example:"analyst"`
	Password string `json:"password" validate:"required,min=6" example:"s3cret-pass"`
	Name     string `json:"name,omitempty" validate:"max=120" example:"Lab Analyst"`
} // @name Registration

func (r *Registration) Validate() error {
	return validator.Struct(r)
}

// RefreshRequest carries the refresh token to exchange or, on logout, to discard.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
} // @name RefreshRequest

func (r *RefreshRequest) Validate() error {
	return validator.Struct(r)
}

// TokenPair is an access token with the refresh token that renews it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in" example:"900"`
} // @name TokenPair

// Claims is the application part of a signed token. Roles holds role ids.
type Claims struct {
	UserID primitive.ObjectID `json:"user_id"`
	Email  string             `json:"email"`
	Name   string             `json:"name,omitempty"`
	Roles  []string           `json:"roles"`
}

// SessionResponse is returned by login, register and refresh.
type SessionResponse struct {
	TokenPair
	// User is omitted on refresh.
	User *model.Identity `json:"user,omitempty"`
	// IsAdmin reports whether the user may manage the catalogs.
	IsAdmin bool `json:"is_admin" example:"false"`
} // @name SessionResponse
