package events

import (
	"github.com/beam-cloud/emailreader/pkg/types"
)

type Kind string

const (
	KindAuthSucceeded   Kind = "auth.succeeded"
	KindLoadingStarted  Kind = "loading.started"
	KindLoadingFinished Kind = "loading.finished"
	KindBatch           Kind = "batch"
	KindFailed          Kind = "failed"
)

// Event is delivered to the presentation layer for one login attempt
type Event interface {
	Kind() Kind
}

// AuthSucceeded carries the token set and, when the identity token verified, the profile
type AuthSucceeded struct {
	Tokens  *types.TokenSet
	Profile *types.Profile
}

// LoadingStarted marks the start of inbox ingestion
type LoadingStarted struct {
	SummarizeEnabled bool
}

type LoadingFinished struct{}

// Batch is the final ordered message list
type Batch struct {
	Messages []*types.EmailMessage
}

// Failed ends an attempt
type Failed struct {
	Err error
}

func (AuthSucceeded) Kind() Kind   { return KindAuthSucceeded }
func (LoadingStarted) Kind() Kind  { return KindLoadingStarted }
func (LoadingFinished) Kind() Kind { return KindLoadingFinished }
func (Batch) Kind() Kind           { return KindBatch }
func (Failed) Kind() Kind          { return KindFailed }
