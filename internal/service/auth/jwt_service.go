package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and validates the signed token pair used by the API:
// a short-lived access token presented on every request and a longer-lived
// refresh token exchanged for a fresh pair at /auth/refresh.
type JWTService interface {
	// GenerateToken issues a signed access token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken checks the access token's signature, expiry, and token
	// type, returning its claims. A refresh token presented here fails with
	// ErrWrongTokenType.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken issues a signed refresh token for the user.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshToken checks the refresh token's signature, expiry,
	// and token type, returning its claims. An access token presented here
	// fails with ErrWrongTokenType.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the decoded payload of either token kind.
type Claims struct {
	// UserID identifies the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// TokenType is "access" or "refresh", keeping the two kinds from being
	// used in each other's place.
	TokenType string `json:"type,omitempty"`

	// Registered JWT claims carried through from the signed token.
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
