package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/rs/zerolog/log"
)

const (
	DefaultWindowDays = 7
	DefaultMaxResults = 50
	DefaultLabel      = "INBOX"
)

// Window is a range of whole local days. End is exclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// TrailingWindow returns today plus the days-1 prior days
func TrailingWindow(now time.Time, days int) Window {
	if days <= 0 {
		days = DefaultWindowDays
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return Window{
		Start: today.AddDate(0, 0, -(days - 1)),
		End:   today.AddDate(0, 0, 1),
	}
}

// Query renders the window as a search string. Epoch bounds keep the window in
// local time rather than the provider's.
func (w Window) Query() string {
	return fmt.Sprintf("after:%d before:%d", w.Start.Unix()-1, w.End.Unix())
}

// Lister lists recent inbox message ids
type Lister struct {
	client Client
	cfg    types.MailConfig
	now    func() time.Time
}

// NewLister creates a lister from mail config
func NewLister(client Client, cfg types.MailConfig) *Lister {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Label == "" {
		cfg.Label = DefaultLabel
	}
	return &Lister{client: client, cfg: cfg, now: time.Now}
}

// List returns message ids within the trailing window in provider order. An
// empty result is not an error.
func (l *Lister) List(ctx context.Context) ([]string, error) {
	window := TrailingWindow(l.now(), l.cfg.WindowDays)
	q := ListQuery{
		Raw:        window.Query(),
		Label:      l.cfg.Label,
		MaxResults: l.cfg.MaxResults,
	}

	ids, err := l.client.ListMessageIDs(ctx, q)
	if err != nil {
		return nil, err
	}

	log.Info().
		Time("from", window.Start).
		Int("count", len(ids)).
		Msg("inbox listed")
	return ids, nil
}
