package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// GoogleOIDCClient implements OIDCClient against Google's OIDC provider.
type GoogleOIDCClient struct {
	verifier    *oidc.IDTokenVerifier
	oauthConfig *oauth2.Config
}

// NewGoogleOIDCClient discovers Google's endpoints from the well-known
// configuration and prepares the token verifier.
func NewGoogleOIDCClient(ctx context.Context, clientID, clientSecret, redirectURL string) (*GoogleOIDCClient, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	return &GoogleOIDCClient{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}, nil
}

// GetAuthURL returns the Google authorization URL carrying the CSRF state.
func (g *GoogleOIDCClient) GetAuthURL(state string) string {
	return g.oauthConfig.AuthCodeURL(state)
}

// ExchangeCode trades the authorization code for tokens, verifies the ID
// token, and extracts the profile claims.
func (g *GoogleOIDCClient) ExchangeCode(ctx context.Context, code string) (*Claims, error) {
	oauth2Token, err := g.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodeExchangeFailed, err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing id_token in token response", ErrCodeExchangeFailed)
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: id_token verification failed: %v", ErrCodeExchangeFailed, err)
	}

	var googleClaims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&googleClaims); err != nil {
		return nil, fmt.Errorf("%w: failed to parse claims: %v", ErrCodeExchangeFailed, err)
	}

	return &Claims{
		Sub:           googleClaims.Sub,
		Email:         googleClaims.Email,
		Name:          googleClaims.Name,
		EmailVerified: googleClaims.EmailVerified,
	}, nil
}
