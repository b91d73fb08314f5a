package summarize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeout = 30 * time.Second

	summaryCacheSize = 512
	summaryCacheTTL  = time.Hour
)

const summaryInstructions = `Summarize the following email in one sentence.
If the email states an explicit date or time, include it after the summary as "Date: ..." and "Time: ...".
If there is no date or time, do not write anything for them.

Email:
`

var errEmptySummary = errors.New("generate summary: empty response")

// Pipeline annotates messages with a model-generated summary. A pipeline
// without a model is disabled and leaves messages untouched. Summaries are
// cached by message id, so a later login in the same process does not ask the
// model again for a message it already summarized.
type Pipeline struct {
	model   Model
	timeout time.Duration
	cache   *expirable.LRU[string, string]
}

// NewPipeline creates a pipeline. A nil model disables summarization.
func NewPipeline(model Model, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Pipeline{
		model:   model,
		timeout: timeout,
		cache:   expirable.NewLRU[string, string](summaryCacheSize, nil, summaryCacheTTL),
	}
}

// Timeout is the bound applied to each model call
func (p *Pipeline) Timeout() time.Duration {
	if p == nil {
		return DefaultTimeout
	}
	return p.timeout
}

// Enabled reports whether messages will be summarized
func (p *Pipeline) Enabled() bool {
	return p != nil && p.model != nil
}

// Model returns the underlying model, or nil when disabled
func (p *Pipeline) Model() Model {
	if p == nil {
		return nil
	}
	return p.model
}

// Summarize sets msg's summary. Failures, panics included, are logged and
// leave the summary unset.
func (p *Pipeline) Summarize(ctx context.Context, msg *types.EmailMessage) {
	if !p.Enabled() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("message_id", msg.ID).Msg("summary panicked")
		}
	}()

	if err := p.summarize(ctx, msg); err != nil {
		log.Warn().Err(err).Str("message_id", msg.ID).Msg("summary unavailable")
	}
}

func (p *Pipeline) summarize(ctx context.Context, msg *types.EmailMessage) error {
	content := msg.Content()
	if content == "" {
		return nil
	}

	if cached, ok := p.cache.Get(msg.ID); ok && msg.ID != "" {
		msg.SetSummary(cached)
		log.Debug().Str("message_id", msg.ID).Msg("summary cache hit")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	summary, err := p.model.Generate(ctx, BuildSummaryPrompt(content))
	if err != nil {
		return fmt.Errorf("generate summary: %w", err)
	}
	if summary == "" {
		return errEmptySummary
	}

	msg.SetSummary(summary)
	if msg.ID != "" {
		p.cache.Add(msg.ID, summary)
	}
	log.Debug().Str("message_id", msg.ID).Msg("message summarized")
	return nil
}

// BuildSummaryPrompt returns the single-message summary prompt
func BuildSummaryPrompt(content string) string {
	return summaryInstructions + content
}
