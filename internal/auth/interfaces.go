package auth

import (
	"context"
	"time"
)

// TokenService defines the interface for token creation and validation.
// Implemented by PasetoService (PASETO v4.local).
type TokenService interface {
	CreateToken(tokenID string, userID int64, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// TokenRegistry records issued token IDs so outstanding tokens can be
// revoked before their expiry, e.g. after a password change.
type TokenRegistry interface {
	Register(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	RevokeUserTokens(ctx context.Context, userID int64) error
}
