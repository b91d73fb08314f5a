package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

const streamBuffer = 8

// Stream is a single-producer event channel scoped to one attempt
type Stream struct {
	ch     chan Event
	mu     sync.Mutex
	closed bool
}

func NewStream() *Stream {
	return &Stream{ch: make(chan Event, streamBuffer)}
}

// C returns the receive side. It is closed after the final event.
func (s *Stream) C() <-chan Event {
	return s.ch
}

// Emit delivers e, blocking while the buffer is full. Once the buffer is full
// it gives up when ctx is done. Reports whether the event was delivered.
func (s *Stream) Emit(ctx context.Context, e Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- e:
		return true
	default:
	}

	select {
	case s.ch <- e:
		return true
	case <-ctx.Done():
		log.Warn().Str("kind", string(e.Kind())).Msg("event dropped, no reader")
		return false
	}
}

// Close closes the channel. Safe to call more than once.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Handlers maps event kinds to callbacks
type Handlers struct {
	handlers map[Kind][]func(Event)
}

func NewHandlers() *Handlers {
	return &Handlers{handlers: make(map[Kind][]func(Event))}
}

// On registers fn for events of kind k
func (h *Handlers) On(k Kind, fn func(Event)) *Handlers {
	h.handlers[k] = append(h.handlers[k], fn)
	return h
}

// Dispatch reads events until the channel closes or ctx is done, and returns
// the Failed error if one was received.
func (h *Handlers) Dispatch(ctx context.Context, ch <-chan Event) error {
	var failure error
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-ch:
			if !ok {
				return failure
			}
			if f, isFailed := e.(Failed); isFailed {
				failure = f.Err
			}
			for _, fn := range h.handlers[e.Kind()] {
				fn(e)
			}
		}
	}
}
