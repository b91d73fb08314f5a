package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthorizationDenied is returned when the provider redirects back with an error parameter
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrListenerClosed is returned when a listener terminated without a code
	ErrListenerClosed = errors.New("callback listener closed")

	// ErrMissingCode is returned when a deep link carries no authorization code
	ErrMissingCode = errors.New("missing authorization code")

	// ErrModelDisabled is returned when a model call is attempted without a credential
	ErrModelDisabled = errors.New("generative model not configured")
)

// MissingCredentialError is returned when required static credentials are absent
type MissingCredentialError struct {
	Fields []string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing required credentials: %s", strings.Join(e.Fields, ", "))
}

// ExchangeStage identifies which step of the authorization exchange failed
type ExchangeStage string

const (
	StageExchange ExchangeStage = "exchange"
	StageVerify   ExchangeStage = "verify"
)

// ExchangeError is terminal for a login attempt: the user has to start over
type ExchangeError struct {
	Stage ExchangeStage
	Err   error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// IsExchangeError checks if the given error is an ExchangeError
func IsExchangeError(err error) bool {
	var exchangeErr *ExchangeError
	return errors.As(err, &exchangeErr)
}

// AuthorizationError carries the error parameter returned by the provider
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization denied: %s", e.Reason)
}

func (e *AuthorizationError) Is(target error) bool {
	return target == ErrAuthorizationDenied
}
