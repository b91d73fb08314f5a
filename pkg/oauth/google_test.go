package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type stubVerifier struct {
	profile  *types.Profile
	err      error
	raw      string
	audience string
}

func (s *stubVerifier) Verify(_ context.Context, raw, audience string) (*types.Profile, error) {
	s.raw, s.audience = raw, audience
	return s.profile, s.err
}

type tokenServer struct {
	srv     *httptest.Server
	form    url.Values
	status  int
	idToken string
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()
	ts := &tokenServer{status: http.StatusOK}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		ts.form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		if ts.status != http.StatusOK {
			w.WriteHeader(ts.status)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"Bad Request"}`))
			return
		}
		body := map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"token_type":    "Bearer",
			"expires_in":    3600,
		}
		if ts.idToken != "" {
			body["id_token"] = ts.idToken
		}
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func newTestGoogleClient(t *testing.T, ts *tokenServer, v TokenVerifier) *GoogleClient {
	t.Helper()
	creds, err := types.NewCredentials(testClientID, "secret", "")
	require.NoError(t, err)
	return NewGoogleClient(creds, v).WithEndpoint(oauth2.Endpoint{
		AuthURL:   ts.srv.URL + "/auth",
		TokenURL:  ts.srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	})
}

func TestGoogleClient_AuthorizeURL(t *testing.T) {
	ts := newTokenServer(t)
	g := newTestGoogleClient(t, ts, &stubVerifier{})

	raw := g.AuthorizeURL("http://127.0.0.1:5555/callback", "state-1")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, testClientID, q.Get("client_id"))
	assert.Equal(t, "http://127.0.0.1:5555/callback", q.Get("redirect_uri"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "https://www.googleapis.com/auth/gmail.readonly openid profile email", q.Get("scope"))
}

func TestGoogleClient_ExchangeWithIdentity(t *testing.T) {
	ts := newTokenServer(t)
	ts.idToken = "header.payload.sig"
	verifier := &stubVerifier{profile: &types.Profile{Name: "Ada", Email: "ada@example.com"}}
	g := newTestGoogleClient(t, ts, verifier)

	tokens, profile, err := g.Exchange(context.Background(), "code-1", "http://127.0.0.1:5555/callback")
	require.NoError(t, err)

	assert.Equal(t, "authorization_code", ts.form.Get("grant_type"))
	assert.Equal(t, "code-1", ts.form.Get("code"))
	assert.Equal(t, "http://127.0.0.1:5555/callback", ts.form.Get("redirect_uri"))

	assert.Equal(t, "access-1", tokens.AccessToken)
	assert.Equal(t, "refresh-1", tokens.RefreshToken)
	assert.Equal(t, "header.payload.sig", tokens.IDToken)
	assert.False(t, tokens.Expiry.IsZero())

	assert.Equal(t, "Ada", profile.Name)
	assert.Equal(t, "header.payload.sig", verifier.raw)
	assert.Equal(t, testClientID, verifier.audience)
}

func TestGoogleClient_ExchangeWithoutIdentity(t *testing.T) {
	ts := newTokenServer(t)
	verifier := &stubVerifier{err: errors.New("must not be called")}
	g := newTestGoogleClient(t, ts, verifier)

	tokens, profile, err := g.Exchange(context.Background(), "code-1", "emailreader://callback")
	require.NoError(t, err)
	assert.Equal(t, "access-1", tokens.AccessToken)
	assert.Nil(t, profile)
	assert.Empty(t, verifier.raw)
	assert.Equal(t, "emailreader://callback", ts.form.Get("redirect_uri"))
}

func TestGoogleClient_ExchangeFailure(t *testing.T) {
	ts := newTokenServer(t)
	ts.status = http.StatusBadRequest
	g := newTestGoogleClient(t, ts, &stubVerifier{})

	_, _, err := g.Exchange(context.Background(), "bad-code", "emailreader://callback")
	require.Error(t, err)

	var exErr *types.ExchangeError
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, types.StageExchange, exErr.Stage)
}

func TestGoogleClient_VerifyFailure(t *testing.T) {
	ts := newTokenServer(t)
	ts.idToken = "forged"
	g := newTestGoogleClient(t, ts, &stubVerifier{err: errors.New("bad signature")})

	tokens, profile, err := g.Exchange(context.Background(), "code-1", "emailreader://callback")
	assert.Nil(t, tokens)
	assert.Nil(t, profile)

	var exErr *types.ExchangeError
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, types.StageVerify, exErr.Stage)
	assert.True(t, types.IsExchangeError(err))
}

func TestToOAuth2Token(t *testing.T) {
	tok := ToOAuth2Token(&types.TokenSet{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"})
	assert.Equal(t, "a", tok.AccessToken)
	assert.Equal(t, "r", tok.RefreshToken)
	assert.True(t, tok.Valid())
}
