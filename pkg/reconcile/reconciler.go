package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beam-cloud/emailreader/pkg/summarize"
	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/rs/zerolog/log"
)

var ErrNoJSONObject = errors.New("reply contains no JSON object")

// Reconciler sends reconciliation prompts to a generative model. Each call is
// bounded by timeout.
type Reconciler struct {
	model   summarize.Model
	timeout time.Duration
}

// NewReconciler creates a reconciler. A non-positive timeout uses the
// summarizer's default.
func NewReconciler(model summarize.Model, timeout time.Duration) *Reconciler {
	if timeout <= 0 {
		timeout = summarize.DefaultTimeout
	}
	return &Reconciler{model: model, timeout: timeout}
}

// Reconcile builds the prompt, calls the model and decodes the reply. The
// decoded fields are not checked against the prompt's rules.
func (r *Reconciler) Reconcile(ctx context.Context, patterns []types.Pattern, scheduled []types.ScheduledItem, emails []*types.EmailMessage) (*types.ExtractionResult, error) {
	if r == nil || r.model == nil {
		return nil, types.ErrModelDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prompt := BuildPrompt(patterns, scheduled, emails)
	reply, err := r.model.Generate(ctx, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	result, err := DecodeResult(reply)
	if err != nil {
		log.Warn().Err(err).Int("reply_len", len(reply)).Msg("unusable reconciliation reply")
		return nil, err
	}
	return result, nil
}

// DecodeResult decodes the first JSON object in a model reply, tolerating
// surrounding prose and code fences.
func DecodeResult(reply string) (*types.ExtractionResult, error) {
	start := strings.IndexByte(reply, '{')
	if start < 0 {
		return nil, ErrNoJSONObject
	}

	var result types.ExtractionResult
	dec := json.NewDecoder(strings.NewReader(reply[start:]))
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("decode reconciliation reply: %w", err)
	}
	return &result, nil
}
