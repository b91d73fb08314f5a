package oauth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// LoginScopes are requested for every login: read-only mail plus identity
var LoginScopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"openid",
	"profile",
	"email",
}

// Exchanger builds authorization URLs and trades codes for tokens. Both the
// loopback listener and the deep-link handler go through the same Exchange.
type Exchanger interface {
	AuthorizeURL(redirectURI, state string) string
	Exchange(ctx context.Context, code, redirectURI string) (*types.TokenSet, *types.Profile, error)
	ClientID() string
}

// GoogleClient handles the Google authorization-code flow for a desktop client
type GoogleClient struct {
	creds      types.Credentials
	endpoint   oauth2.Endpoint
	verifier   TokenVerifier
	httpClient *http.Client
}

// NewGoogleClient creates a Google OAuth client. The verifier checks identity
// tokens returned alongside the access token.
func NewGoogleClient(creds types.Credentials, verifier TokenVerifier) *GoogleClient {
	return &GoogleClient{
		creds:      creds,
		endpoint:   google.Endpoint,
		verifier:   verifier,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithEndpoint overrides the provider endpoint
func (g *GoogleClient) WithEndpoint(endpoint oauth2.Endpoint) *GoogleClient {
	g.endpoint = endpoint
	return g
}

// ClientID returns the registered client id
func (g *GoogleClient) ClientID() string {
	return g.creds.ClientID()
}

// AuthorizeURL generates the authorization URL requesting offline access
func (g *GoogleClient) AuthorizeURL(redirectURI, state string) string {
	return g.oauthConfig(redirectURI).AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange exchanges an authorization code for tokens and, when an identity
// token is present, verifies it and extracts the profile. A missing identity
// token yields a nil profile. Failures are returned as *types.ExchangeError.
func (g *GoogleClient) Exchange(ctx context.Context, code, redirectURI string) (*types.TokenSet, *types.Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)

	token, err := g.oauthConfig(redirectURI).Exchange(ctx, code)
	if err != nil {
		event := log.Error().Err(err).Str("redirect_uri", redirectURI)
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			event = event.Int("status", retrieveErr.Response.StatusCode).Str("error_code", retrieveErr.ErrorCode)
		}
		event.Msg("token exchange failed")
		return nil, nil, &types.ExchangeError{Stage: types.StageExchange, Err: err}
	}

	tokens := &types.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		log.Warn().Msg("identity token missing from token response, profile unavailable")
		return tokens, nil, nil
	}
	tokens.IDToken = idToken

	profile, err := g.verifier.Verify(ctx, idToken, g.creds.ClientID())
	if err != nil {
		log.Error().Err(err).Msg("identity token verification failed")
		return nil, nil, &types.ExchangeError{Stage: types.StageVerify, Err: err}
	}

	log.Info().Str("name", profile.Name).Msg("login successful")
	return tokens, profile, nil
}

// TokenSource returns an oauth2 token source for API calls
func (g *GoogleClient) TokenSource(ctx context.Context, tokens *types.TokenSet) oauth2.TokenSource {
	return g.oauthConfig("").TokenSource(ctx, ToOAuth2Token(tokens))
}

// ToOAuth2Token converts a token set to an oauth2 token
func ToOAuth2Token(tokens *types.TokenSet) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		Expiry:       tokens.Expiry,
	}
}

func (g *GoogleClient) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.creds.ClientID(),
		ClientSecret: g.creds.ClientSecret(),
		RedirectURL:  redirectURI,
		Scopes:       LoginScopes,
		Endpoint:     g.endpoint,
	}
}
