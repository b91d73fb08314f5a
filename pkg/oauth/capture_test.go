package oauth

import (
	"context"
	"testing"

	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeepLink(t *testing.T) {
	cfg := types.OAuthConfig{RedirectScheme: "emailreader"}

	tests := []struct {
		name    string
		url     string
		code    string
		wantErr error
		anyErr  bool
	}{
		{name: "host form", url: "emailreader://callback?code=4/abc", code: "4/abc"},
		{name: "trailing slash", url: "emailreader://callback/?code=xyz&scope=email", code: "xyz"},
		{name: "opaque form", url: "emailreader:callback?code=opaque", code: "opaque"},
		{name: "missing code", url: "emailreader://callback", wantErr: types.ErrMissingCode},
		{name: "provider error", url: "emailreader://callback?error=access_denied", wantErr: types.ErrAuthorizationDenied},
		{name: "wrong scheme", url: "https://callback?code=abc", anyErr: true},
		{name: "wrong target", url: "emailreader://settings?code=abc", anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture, err := ParseDeepLink(tt.url, cfg)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, "emailreader://callback", capture.RedirectURI())
				code, err := capture.Code(context.Background())
				require.NoError(t, err)
				assert.Equal(t, tt.code, code)
			}
		})
	}
}

func TestDeepLinkCapture_CancelledContext(t *testing.T) {
	capture, err := ParseDeepLink("emailreader://callback?code=abc", types.OAuthConfig{RedirectScheme: "emailreader"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = capture.Code(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
