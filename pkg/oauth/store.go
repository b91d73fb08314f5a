package oauth

import (
	"sync"
	"time"

	"github.com/beam-cloud/emailreader/pkg/common"
)

// SessionStatus represents the state of an authorization session
type SessionStatus string

const (
	StatusPending  SessionStatus = "pending"
	StatusComplete SessionStatus = "complete"
	StatusError    SessionStatus = "error"
)

// Session represents one login attempt's callback listener
type Session struct {
	ID          string        `json:"id"`
	Port        int           `json:"port"`
	RedirectURI string        `json:"redirect_uri"`
	Status      SessionStatus `json:"status"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// sessionState guards a Session that moves from pending to a terminal status once
type sessionState struct {
	mu      sync.RWMutex
	session Session
}

func newSessionState() *sessionState {
	return &sessionState{
		session: Session{
			ID:        common.GenerateAttemptID(),
			Status:    StatusPending,
			CreatedAt: time.Now(),
		},
	}
}

func (s *sessionState) bind(port int, redirectURI string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Port = port
	s.session.RedirectURI = redirectURI
}

func (s *sessionState) complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Status = StatusComplete
}

func (s *sessionState) fail(errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Status = StatusError
	s.session.Error = errMsg
}

func (s *sessionState) get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}
