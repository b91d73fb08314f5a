package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	loopbackHost      = "127.0.0.1"
	faviconPath       = "/favicon.ico"
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second

	alreadyHandledMsg = "Login already handled. You can close this window."
)

// ListenerOptions configures a callback listener
type ListenerOptions struct {
	CallbackPath string
	// State, when set, must match the state query parameter of a terminal callback
	State string
}

// Listener is an ephemeral loopback HTTP server that accepts exactly one
// completed OAuth redirect. It has no timeout of its own; callers bound Code
// with a context.
type Listener struct {
	callbackPath string
	state        string

	echo   *echo.Echo
	server *http.Server
	ln     net.Listener

	session *sessionState
	once    sync.Once
	done    chan struct{}
	code    string
	err     error
}

// NewListener creates a listener. Call Start to bind it.
func NewListener(opts ListenerOptions) *Listener {
	if opts.CallbackPath == "" {
		opts.CallbackPath = "/callback"
	}

	l := &Listener{
		callbackPath: opts.CallbackPath,
		state:        opts.State,
		session:      newSessionState(),
		done:         make(chan struct{}),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetOutput(io.Discard)
	e.HTTPErrorHandler = l.handleError
	e.Use(l.recoverMiddleware)
	e.Any(faviconPath, l.handleFavicon)
	e.GET(l.callbackPath, l.handleCallback)
	l.echo = e

	return l
}

// Start binds an OS-assigned loopback port and starts serving. Port and
// RedirectURI are valid once Start returns.
func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", net.JoinHostPort(loopbackHost, "0"))
	if err != nil {
		return fmt.Errorf("bind callback listener: %w", err)
	}
	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok || addr.Port == 0 {
		ln.Close()
		return errors.New("bind callback listener: no port assigned")
	}

	l.ln = ln
	l.server = &http.Server{
		Handler:           l.echo,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          stdlog.New(log.Logger, "", 0),
	}
	l.session.bind(addr.Port, fmt.Sprintf("http://%s:%d%s", loopbackHost, addr.Port, l.callbackPath))

	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("session_id", l.session.get().ID).Msg("callback listener stopped")
			l.finish("", fmt.Errorf("callback listener: %w", err))
		}
	}()

	log.Info().
		Str("session_id", l.session.get().ID).
		Str("redirect_uri", l.RedirectURI()).
		Msg("callback listener started")
	return nil
}

// Port returns the bound port, or 0 before Start
func (l *Listener) Port() int {
	return l.session.get().Port
}

// RedirectURI returns the callback URL registered with the provider
func (l *Listener) RedirectURI() string {
	return l.session.get().RedirectURI
}

// Session returns a snapshot of the authorization session
func (l *Listener) Session() Session {
	return l.session.get()
}

// Code blocks until the listener reaches a terminal state or ctx is done.
// Cancelling ctx closes the listener.
func (l *Listener) Code(ctx context.Context) (string, error) {
	select {
	case <-l.done:
		return l.code, l.err
	case <-ctx.Done():
		l.Close()
		return "", ctx.Err()
	}
}

// Done is closed once the listener has terminated
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// Close terminates the listener without a code. Safe to call more than once.
func (l *Listener) Close() {
	l.finish("", types.ErrListenerClosed)
}

// finish records the terminal outcome. Only the first call wins.
func (l *Listener) finish(code string, err error) bool {
	won := false
	l.once.Do(func() {
		won = true
		l.code, l.err = code, err
		if err != nil {
			l.session.fail(err.Error())
		} else {
			l.session.complete()
		}
		close(l.done)
		go l.shutdown()
	})
	return won
}

func (l *Listener) shutdown() {
	if l.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := l.server.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("callback listener shutdown")
		l.server.Close()
	}
	log.Debug().Str("session_id", l.session.get().ID).Msg("callback listener closed")
}

func (l *Listener) terminated() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

func (l *Listener) handleFavicon(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func (l *Listener) handleCallback(c echo.Context) error {
	sessionID := l.session.get().ID
	if l.terminated() {
		return c.String(http.StatusGone, alreadyHandledMsg)
	}

	errParam, code := c.QueryParam("error"), c.QueryParam("code")
	if errParam == "" && code == "" {
		log.Warn().Str("session_id", sessionID).Msg("callback received without a code parameter")
		return renderPage(c, http.StatusOK, waitingPage)
	}

	// Terminal callbacks must carry the state this attempt sent
	if l.state != "" && c.QueryParam("state") != l.state {
		log.Warn().Str("session_id", sessionID).Msg("callback state mismatch, ignoring")
		return c.String(http.StatusBadRequest, "Invalid state")
	}

	if errParam != "" {
		log.Error().Str("session_id", sessionID).Str("error", errParam).Msg("oauth provider returned an error")
		if !l.finish("", &types.AuthorizationError{Reason: errParam}) {
			return c.String(http.StatusGone, alreadyHandledMsg)
		}
		return renderPage(c, http.StatusBadRequest, failurePage)
	}

	if !l.finish(code, nil) {
		return c.String(http.StatusGone, alreadyHandledMsg)
	}

	log.Info().Str("session_id", sessionID).Msg("authorization code received")
	return renderPage(c, http.StatusOK, successPage)
}

func (l *Listener) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	switch code {
	case http.StatusNotFound:
		log.Warn().Str("path", c.Request().URL.Path).Msg("unexpected callback path")
		c.String(http.StatusNotFound, "Not found")
	case http.StatusMethodNotAllowed:
		c.String(http.StatusMethodNotAllowed, "Method not allowed")
	default:
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("callback request failed")
		c.String(code, http.StatusText(code))
	}
}

// recoverMiddleware keeps a handler panic from reaching the host process. A
// panic ends the attempt.
func (l *Listener) recoverMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request().URL.Path).Msg("callback handler panicked")
				l.finish("", fmt.Errorf("callback handler panic: %v", r))
				if !c.Response().Committed {
					err = c.String(http.StatusInternalServerError, "Internal error")
				}
			}
		}()
		return next(c)
	}
}
