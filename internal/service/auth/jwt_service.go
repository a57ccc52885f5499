// Package auth issues and validates the bearer tokens protecting the
// admin API.
package auth

import "context"

// Claims carries the validated identity extracted from a token.
type Claims struct {
	// Subject is the authenticated principal name
	Subject string `json:"sub"`
}

// JWTService generates and validates access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the principal.
	GenerateToken(ctx context.Context, subject string) (string, error)

	// ValidateToken verifies a token and returns its claims, or an
	// error if validation fails (expired, invalid signature, malformed).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}
