package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/beam-cloud/emailreader/pkg/common"
	"github.com/beam-cloud/emailreader/pkg/events"
	"github.com/beam-cloud/emailreader/pkg/mail"
	"github.com/beam-cloud/emailreader/pkg/oauth"
	"github.com/beam-cloud/emailreader/pkg/summarize"
	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/rs/zerolog/log"
)

// MailClientFactory builds a mail client authorized by a token set
type MailClientFactory func(ctx context.Context, tokens *types.TokenSet) (mail.Client, error)

// Deps are the orchestrator's collaborators
type Deps struct {
	Exchanger     oauth.Exchanger
	NewMailClient MailClientFactory
	OpenBrowser   common.BrowserOpener
	Summarizer    *summarize.Pipeline
}

// Orchestrator sequences login, exchange, ingestion and delivery
type Orchestrator struct {
	cfg  types.AppConfig
	deps Deps
}

func New(cfg types.AppConfig, deps Deps) *Orchestrator {
	if deps.Summarizer == nil {
		deps.Summarizer = summarize.NewPipeline(nil, 0)
	}
	return &Orchestrator{cfg: cfg, deps: deps}
}

// SummarizeEnabled reports whether ingested messages get summaries
func (o *Orchestrator) SummarizeEnabled() bool {
	return o.deps.Summarizer.Enabled()
}

// Model returns the configured generative model, or nil when none is set
func (o *Orchestrator) Model() summarize.Model {
	return o.deps.Summarizer.Model()
}

// ModelTimeout is the bound on each model call
func (o *Orchestrator) ModelTimeout() time.Duration {
	return o.deps.Summarizer.Timeout()
}

// Login starts a loopback login attempt on a fresh listener and opens the
// browser at the authorization URL. A browser failure is logged; the returned
// attempt still carries the URL.
func (o *Orchestrator) Login(ctx context.Context) (*Attempt, error) {
	state := common.GenerateState()
	listener := oauth.NewListener(oauth.ListenerOptions{
		CallbackPath: o.cfg.OAuth.CallbackPath,
		State:        state,
	})
	if err := listener.Start(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	attempt := newAttempt(listener.Session().ID, listener.RedirectURI(), cancel)
	attempt.AuthorizeURL = o.deps.Exchanger.AuthorizeURL(listener.RedirectURI(), state)

	if o.deps.OpenBrowser != nil {
		if err := o.deps.OpenBrowser(attempt.AuthorizeURL); err != nil {
			log.Warn().Err(err).Str("attempt_id", attempt.ID).Msg("could not open browser")
		}
	}

	go func() {
		defer listener.Close()
		o.run(ctx, attempt, listener)
	}()
	return attempt, nil
}

// HandleDeepLink runs the same flow for a code delivered to the registered
// URI scheme. Malformed links fail before an attempt starts.
func (o *Orchestrator) HandleDeepLink(ctx context.Context, rawURL string) (*Attempt, error) {
	capture, err := oauth.ParseDeepLink(rawURL, o.cfg.OAuth)
	if err != nil {
		log.Error().Err(err).Msg("rejected deep link")
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	attempt := newAttempt(common.GenerateAttemptID(), capture.RedirectURI(), cancel)

	go o.run(ctx, attempt, capture)
	return attempt, nil
}

func (o *Orchestrator) run(ctx context.Context, a *Attempt, capture oauth.CodeCapture) {
	defer a.finish()
	logger := log.With().Str("attempt_id", a.ID).Logger()

	code, err := capture.Code(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("no authorization code")
		a.emit(ctx, events.Failed{Err: err})
		return
	}

	tokens, profile, err := o.deps.Exchanger.Exchange(ctx, code, capture.RedirectURI())
	if err != nil {
		a.emit(ctx, events.Failed{Err: err})
		return
	}
	a.emit(ctx, events.AuthSucceeded{Tokens: tokens, Profile: profile})
	a.emit(ctx, events.LoadingStarted{SummarizeEnabled: o.SummarizeEnabled()})

	messages, err := o.Ingest(ctx, tokens)
	a.emit(ctx, events.LoadingFinished{})
	if err != nil {
		logger.Error().Err(err).Msg("inbox ingestion failed")
		a.emit(ctx, events.Failed{Err: err})
		return
	}

	a.emit(ctx, events.Batch{Messages: messages})
	logger.Info().Int("messages", len(messages)).Msg("batch delivered")
}

// Ingest lists the trailing window, then fetches and optionally summarizes
// each message. Per-message failures are dropped; the returned slice is
// never nil.
func (o *Orchestrator) Ingest(ctx context.Context, tokens *types.TokenSet) ([]*types.EmailMessage, error) {
	client, err := o.deps.NewMailClient(ctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("mail client: %w", err)
	}

	ids, err := mail.NewLister(client, o.cfg.Mail).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	if len(ids) == 0 {
		return []*types.EmailMessage{}, nil
	}

	var process mail.ProcessFunc
	if o.deps.Summarizer.Enabled() {
		process = o.deps.Summarizer.Summarize
	}

	return mail.NewFetcher(client, o.cfg.Mail.FetchConcurrency).FetchAll(ctx, ids, process), nil
}
