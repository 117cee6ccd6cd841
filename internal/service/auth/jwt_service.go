// Package auth validates the bearer tokens that identify learners.
//
// Tokens are HS256 JWTs issued by the identity service; the subject claim is
// the learner's UUID. Issuing tokens here is only meant for tooling and
// tests.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	// ValidateToken validates the provided token string and extracts the claims.
	// Returns the claims if the token is valid, or an error if validation fails
	// (expired, invalid signature, subject is not a learner ID, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// JWTService issues and validates learner tokens.
type JWTService interface {
	TokenValidator

	// GenerateToken creates a signed token for the learner that expires after lifetime.
	GenerateToken(ctx context.Context, userID uuid.UUID, lifetime time.Duration) (string, error)
}

// Claims represents the validated content of a learner token.
type Claims struct {
	// UserID is the learner the token was issued for, taken from the subject.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	Issuer    string    `json:"iss,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
