package mail

import (
	"context"
	"fmt"

	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const DefaultFetchConcurrency = 8

// ProcessFunc runs on each parsed message inside its fetch unit. It cannot fail
// the unit: errors are the callee's to log and a panic keeps the message.
type ProcessFunc func(ctx context.Context, msg *types.EmailMessage)

// Fetcher retrieves and parses full messages
type Fetcher struct {
	client      Client
	concurrency int
}

// NewFetcher creates a fetcher. Non-positive concurrency uses the default.
func NewFetcher(client Client, concurrency int) *Fetcher {
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}
	return &Fetcher{client: client, concurrency: concurrency}
}

// Fetch retrieves and parses a single message
func (f *Fetcher) Fetch(ctx context.Context, id string) (*types.EmailMessage, error) {
	raw, err := f.client.GetMessage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch message %s: %w", id, err)
	}
	if raw.Id == "" {
		raw.Id = id
	}
	return ParseMessage(raw), nil
}

// FetchAll fetches every id independently and returns the messages that
// succeeded, in listing order. Duplicate ids keep their first position. A
// failed unit is logged and dropped; it never cancels its siblings.
func (f *Fetcher) FetchAll(ctx context.Context, ids []string, process ProcessFunc) []*types.EmailMessage {
	ids = dedupe(ids)
	slots := make([]*types.EmailMessage, len(ids))

	var g errgroup.Group
	g.SetLimit(f.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			slots[i] = f.runUnit(ctx, id, process)
			return nil
		})
	}
	g.Wait()

	messages := make([]*types.EmailMessage, 0, len(slots))
	for _, msg := range slots {
		if msg != nil {
			messages = append(messages, msg)
		}
	}

	log.Info().
		Int("requested", len(ids)).
		Int("fetched", len(messages)).
		Msg("messages fetched")
	return messages
}

func (f *Fetcher) runUnit(ctx context.Context, id string, process ProcessFunc) (msg *types.EmailMessage) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("message_id", id).Msg("message unit panicked")
			msg = nil
		}
	}()

	if err := ctx.Err(); err != nil {
		log.Warn().Err(err).Str("message_id", id).Msg("skipping message")
		return nil
	}

	msg, err := f.Fetch(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("message_id", id).Msg("dropping message")
		return nil
	}

	if process != nil {
		runProcess(ctx, msg, process)
	}
	return msg
}

// runProcess keeps a failing hook from costing the unit its fetched message
func runProcess(ctx context.Context, msg *types.EmailMessage, process ProcessFunc) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("message_id", msg.ID).Msg("message processing panicked")
		}
	}()
	process(ctx, msg)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
