// Package auth implements Google OIDC sign-in, cookie sessions, and the
// middleware that attaches the authenticated user to request contexts.
package auth

import (
	"context"
	"errors"
)

// ErrInvalidState is returned when the OAuth state parameter doesn't match.
var ErrInvalidState = errors.New("invalid state parameter")

// ErrCodeExchangeFailed is returned when code exchange fails.
var ErrCodeExchangeFailed = errors.New("code exchange failed")

// Claims contains the ID token claims from OIDC authentication.
type Claims struct {
	Sub           string // unique identifier from the provider
	Email         string
	Name          string
	EmailVerified bool
}

// OIDCClient is the provider side of the sign-in flow. GoogleOIDCClient
// talks to Google; MockOIDCProvider serves a local consent page for
// development.
type OIDCClient interface {
	// GetAuthURL returns the URL to redirect the user to for
	// authentication. The state parameter is a random string for CSRF
	// protection.
	GetAuthURL(state string) string

	// ExchangeCode exchanges an authorization code for ID token claims.
	ExchangeCode(ctx context.Context, code string) (*Claims, error)
}
