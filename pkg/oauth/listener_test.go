package oauth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(l *Listener, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	l.echo.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func isDone(l *Listener) bool {
	select {
	case <-l.Done():
		return true
	default:
		return false
	}
}

func TestListener_Favicon(t *testing.T) {
	l := NewListener(ListenerOptions{})

	rec := serve(l, http.MethodGet, "/favicon.ico")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.False(t, isDone(l))
}

func TestListener_UnknownPath(t *testing.T) {
	l := NewListener(ListenerOptions{})

	rec := serve(l, http.MethodGet, "/elsewhere?code=abc")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", rec.Body.String())
	assert.False(t, isDone(l))
}

func TestListener_WaitingWithoutParams(t *testing.T) {
	l := NewListener(ListenerOptions{})

	rec := serve(l, http.MethodGet, "/callback")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Waiting for auth code...")
	assert.False(t, isDone(l))
	assert.Equal(t, StatusPending, l.Session().Status)
}

func TestListener_CodeCompletesOnce(t *testing.T) {
	l := NewListener(ListenerOptions{})

	rec := serve(l, http.MethodGet, "/callback?code=first")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login success")
	assert.True(t, isDone(l))

	rec = serve(l, http.MethodGet, "/callback?code=second")
	assert.Equal(t, http.StatusGone, rec.Code)

	code, err := l.Code(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", code)
	assert.Equal(t, StatusComplete, l.Session().Status)
}

func TestListener_ConcurrentCodes(t *testing.T) {
	l := NewListener(ListenerOptions{})

	const n = 20
	statuses := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i] = serve(l, http.MethodGet, "/callback?code=c").Code
		}()
	}
	wg.Wait()

	ok := 0
	for _, s := range statuses {
		if s == http.StatusOK {
			ok++
		} else {
			assert.Equal(t, http.StatusGone, s)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestListener_ProviderError(t *testing.T) {
	l := NewListener(ListenerOptions{})

	rec := serve(l, http.MethodGet, "/callback?error=access_denied")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication failed")
	assert.True(t, isDone(l))

	_, err := l.Code(context.Background())
	assert.ErrorIs(t, err, types.ErrAuthorizationDenied)

	var authErr *types.AuthorizationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "access_denied", authErr.Reason)
	assert.Equal(t, StatusError, l.Session().Status)
}

func TestListener_StateMismatch(t *testing.T) {
	l := NewListener(ListenerOptions{State: "expected"})

	rec := serve(l, http.MethodGet, "/callback?code=abc&state=other")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, isDone(l))

	rec = serve(l, http.MethodGet, "/callback?code=abc&state=expected")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, isDone(l))
}

func TestListener_ProviderErrorStateMismatch(t *testing.T) {
	l := NewListener(ListenerOptions{State: "expected"})

	for _, target := range []string{
		"/callback?error=access_denied",
		"/callback?error=access_denied&state=other",
	} {
		rec := serve(l, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "Invalid state", rec.Body.String(), target)
		assert.False(t, isDone(l), target)
	}
	assert.Equal(t, StatusPending, l.Session().Status)

	rec := serve(l, http.MethodGet, "/callback?error=access_denied&state=expected")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication failed")
	assert.True(t, isDone(l))

	_, err := l.Code(context.Background())
	assert.ErrorIs(t, err, types.ErrAuthorizationDenied)
}

func TestListener_MethodNotAllowed(t *testing.T) {
	l := NewListener(ListenerOptions{})

	rec := serve(l, http.MethodPost, "/callback?code=abc")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.False(t, isDone(l))
}

func TestListener_CodeContextCancelClosesListener(t *testing.T) {
	l := NewListener(ListenerOptions{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := l.Code(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, isDone(l))

	rec := serve(l, http.MethodGet, "/callback?code=late")
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestListener_CloseIsIdempotent(t *testing.T) {
	l := NewListener(ListenerOptions{})
	l.Close()
	l.Close()

	_, err := l.Code(context.Background())
	assert.ErrorIs(t, err, types.ErrListenerClosed)
}

func TestListener_ServesOnLoopback(t *testing.T) {
	l := NewListener(ListenerOptions{CallbackPath: "/oauth/callback"})
	require.NoError(t, l.Start())
	defer l.Close()

	require.NotZero(t, l.Port())
	assert.Regexp(t, `^http://127\.0\.0\.1:\d+/oauth/callback$`, l.RedirectURI())

	resp, err := http.Get(l.RedirectURI())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Waiting for auth code...")

	resp, err = http.Get(l.RedirectURI() + "?code=live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	code, err := l.Code(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "live", code)
}

func TestListener_FreshPortPerListener(t *testing.T) {
	a := NewListener(ListenerOptions{})
	b := NewListener(ListenerOptions{})
	require.NoError(t, a.Start())
	require.NoError(t, b.Start())
	defer a.Close()
	defer b.Close()

	assert.NotEqual(t, a.Port(), b.Port())
	assert.NotEqual(t, a.Session().ID, b.Session().ID)
}
