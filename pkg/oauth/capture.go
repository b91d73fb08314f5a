package oauth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/beam-cloud/emailreader/pkg/types"
)

// CodeCapture is a strategy for receiving an authorization code. The redirect
// URI it reports must be the one the code was issued for.
type CodeCapture interface {
	RedirectURI() string
	Code(ctx context.Context) (string, error)
}

var (
	_ CodeCapture = (*Listener)(nil)
	_ CodeCapture = (*DeepLinkCapture)(nil)
)

// DeepLinkCapture holds a code delivered through the application-registered
// URI scheme, e.g. emailreader://callback?code=...
type DeepLinkCapture struct {
	redirectURI string
	code        string
}

// ParseDeepLink validates a deep-link redirect against the configured scheme
// and extracts the code.
func ParseDeepLink(rawURL string, cfg types.OAuthConfig) (*DeepLinkCapture, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse redirect url: %w", err)
	}

	if !strings.EqualFold(u.Scheme, cfg.RedirectScheme) {
		return nil, fmt.Errorf("unexpected redirect scheme %q", u.Scheme)
	}
	if u.Host != "callback" && strings.Trim(u.Opaque+u.Path, "/") != "callback" {
		return nil, fmt.Errorf("unexpected redirect target %q", rawURL)
	}

	query := u.Query()
	if errParam := query.Get("error"); errParam != "" {
		return nil, &types.AuthorizationError{Reason: errParam}
	}

	code := query.Get("code")
	if code == "" {
		return nil, types.ErrMissingCode
	}

	return &DeepLinkCapture{
		redirectURI: cfg.DeepLinkRedirectURI(),
		code:        code,
	}, nil
}

func (d *DeepLinkCapture) RedirectURI() string {
	return d.redirectURI
}

func (d *DeepLinkCapture) Code(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.code, nil
}
