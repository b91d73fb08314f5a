package pipeline

import (
	"context"

	"github.com/beam-cloud/emailreader/pkg/events"
)

// Attempt is one login flow. Its event channel is closed when the flow ends.
type Attempt struct {
	ID           string
	AuthorizeURL string
	RedirectURI  string

	stream *events.Stream
	cancel context.CancelFunc
	done   chan struct{}
}

func newAttempt(id, redirectURI string, cancel context.CancelFunc) *Attempt {
	return &Attempt{
		ID:          id,
		RedirectURI: redirectURI,
		stream:      events.NewStream(),
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Events returns the attempt's presentation events
func (a *Attempt) Events() <-chan events.Event {
	return a.stream.C()
}

// Done is closed after the last event has been emitted
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Cancel abandons the attempt. Any pending callback listener is closed.
func (a *Attempt) Cancel() {
	a.cancel()
}

func (a *Attempt) emit(ctx context.Context, e events.Event) {
	a.stream.Emit(ctx, e)
}

func (a *Attempt) finish() {
	a.stream.Close()
	a.cancel()
	close(a.done)
}
