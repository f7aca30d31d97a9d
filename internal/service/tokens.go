package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/compliance-track/config"
	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/repository"
)

// signedClaims is the JWT payload. The ID claim is random so two tokens issued in the
// same second for the same user still differ.
type signedClaims struct {
	dto.Claims
	jwt.RegisteredClaims
}

// TokenIssuer signs HS256 access and refresh tokens with separate keys. Refresh tokens are
// stored so they can be rotated; access tokens are stored only once revoked.
type TokenIssuer struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      repository.TokensRepositoryInterface
	clock      func() time.Time
}

// NewTokenIssuer creates an issuer from the auth configuration.
func NewTokenIssuer(store repository.TokensRepositoryInterface, cfg config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		accessKey:  []byte(cfg.JWTSecretKey),
		refreshKey: []byte(cfg.JWTRefreshSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		store:      store,
		clock:      time.Now,
	}
}

// Issue signs a token pair for user and stores the refresh token.
func (t *TokenIssuer) Issue(ctx context.Context, user *model.User) (*dto.TokenPair, error) {
	if user == nil || user.ID.IsZero() {
		return nil, errors.New("issue token: user has no id")
	}
	issuedAt := t.clock()
	claims := dto.Claims{UserID: user.ID, Email: user.Email, Name: user.Name, Roles: user.Roles}

	access, err := t.sign(t.accessKey, claims, issuedAt, t.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := t.sign(t.refreshKey, claims, issuedAt, t.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	stored := &model.Token{
		UserID:    user.ID,
		Token:     refresh,
		Kind:      model.TokenRefresh,
		ExpiresAt: issuedAt.Add(t.refreshTTL),
	}
	if err := t.store.Create(ctx, stored); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &dto.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(t.accessTTL / time.Second),
	}, nil
}

// ParseAccess verifies an access token and rejects revoked ones.
func (t *TokenIssuer) ParseAccess(ctx context.Context, raw string) (*dto.Claims, error) {
	claims, err := t.parse(t.accessKey, raw)
	if err != nil {
		return nil, err
	}
	revoked, err := t.store.IsRevoked(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return &claims.Claims, nil
}

// ParseRefresh verifies a refresh token and checks it is still stored.
func (t *TokenIssuer) ParseRefresh(ctx context.Context, raw string) (*dto.Claims, error) {
	claims, err := t.parse(t.refreshKey, raw)
	if err != nil {
		return nil, err
	}
	stored, err := t.store.FindByToken(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	if !stored.Usable(t.clock()) {
		return nil, ErrInvalidToken
	}
	return &claims.Claims, nil
}

// Revoke stores the access token as revoked until it would have expired anyway.
func (t *TokenIssuer) Revoke(ctx context.Context, raw string) error {
	claims, err := t.parse(t.accessKey, raw)
	if err != nil {
		return err
	}
	return t.store.Create(ctx, &model.Token{
		UserID:    claims.UserID,
		Token:     raw,
		Kind:      model.TokenRevoked,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// Forget deletes a stored refresh token.
func (t *TokenIssuer) Forget(ctx context.Context, raw string) error {
	return t.store.DeleteByToken(ctx, raw)
}

// ForgetUser deletes every refresh token of the user.
func (t *TokenIssuer) ForgetUser(ctx context.Context, userID primitive.ObjectID) error {
	return t.store.DeleteByUser(ctx, userID, model.TokenRefresh)
}

func (t *TokenIssuer) sign(key []byte, claims dto.Claims, issuedAt time.Time, ttl time.Duration) (string, error) {
	payload := signedClaims{
		Claims: claims,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(key)
}

func (t *TokenIssuer) parse(key []byte, raw string) (*signedClaims, error) {
	var claims signedClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.clock),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return &claims, nil
}
