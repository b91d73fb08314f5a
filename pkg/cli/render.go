package cli

import (
	"context"
	"fmt"

	"github.com/beam-cloud/emailreader/pkg/events"
	"github.com/beam-cloud/emailreader/pkg/pipeline"
	"github.com/beam-cloud/emailreader/pkg/reconcile"
	"github.com/beam-cloud/emailreader/pkg/types"
)

const (
	emptyInboxMsg = "No recent emails found."
	signedInMsg   = "Signed in"
)

type loginResult struct {
	Profile          *types.Profile          `json:"profile,omitempty"`
	SummarizeEnabled bool                    `json:"summarize_enabled"`
	Messages         []types.EmailView       `json:"messages"`
	Reconciliation   *types.ExtractionResult `json:"reconciliation,omitempty"`
}

// runAttempt renders an attempt's events until its channel closes
func runAttempt(ctx context.Context, orch *pipeline.Orchestrator, attempt *pipeline.Attempt) error {
	result := loginResult{Messages: []types.EmailView{}}
	var batch []*types.EmailMessage

	handlers := events.NewHandlers().
		On(events.KindAuthSucceeded, func(e events.Event) {
			auth := e.(events.AuthSucceeded)
			result.Profile = auth.Profile
			if !IsJSONOutput() {
				PrintSuccess(welcomeLine(auth.Profile))
			}
		}).
		On(events.KindLoadingStarted, func(e events.Event) {
			started := e.(events.LoadingStarted)
			result.SummarizeEnabled = started.SummarizeEnabled
			if IsJSONOutput() {
				return
			}
			PrintInfo("Loading your inbox...")
			if !started.SummarizeEnabled {
				PrintWarning("No model key configured, summaries are off")
			}
		}).
		On(events.KindBatch, func(e events.Event) {
			batch = e.(events.Batch).Messages
			for _, msg := range batch {
				result.Messages = append(result.Messages, msg.View())
			}
			if !IsJSONOutput() {
				PrintBatch(batch)
			}
		})

	if err := handlers.Dispatch(ctx, attempt.Events()); err != nil {
		return err
	}

	if reconcileAfter && batch != nil {
		extraction, err := runReconcile(ctx, orch, batch)
		if err != nil {
			return err
		}
		result.Reconciliation = extraction
		if !IsJSONOutput() {
			PrintExtraction(extraction)
		}
	}

	PrintJSON(result)
	return nil
}

func runReconcile(ctx context.Context, orch *pipeline.Orchestrator, batch []*types.EmailMessage) (*types.ExtractionResult, error) {
	patterns, err := reconcile.LoadPatterns(patternsPath)
	if err != nil {
		return nil, err
	}
	scheduled, err := reconcile.LoadScheduled(scheduledPath)
	if err != nil {
		return nil, err
	}
	return reconcile.NewReconciler(orch.Model(), orch.ModelTimeout()).Reconcile(ctx, patterns, scheduled, batch)
}

func welcomeLine(profile *types.Profile) string {
	if name := profile.DisplayName(); name != "" {
		return fmt.Sprintf("Welcome, %s", name)
	}
	return signedInMsg
}

// PrintBatch prints the delivered messages in order
func PrintBatch(batch []*types.EmailMessage) {
	if len(batch) == 0 {
		PrintInfo(emptyInboxMsg)
		return
	}

	PrintHeader(fmt.Sprintf("Inbox (%d)", len(batch)))
	for i, msg := range batch {
		subject := msg.Subject
		if subject == "" {
			subject = types.NoSubject
		}
		line := fmt.Sprintf("%2d. %s", i+1, BoldStyle.Render(subject))
		if msg.From != "" {
			line += DimStyle.Render(" - " + msg.From)
		}
		PrintIndented(line, 1)
		if summary, ok := msg.Summary(); ok {
			PrintIndented(MutedStyle.Render(Truncate(summary, 120)), 3)
		}
	}
	PrintNewline()
}

// PrintExtraction prints a reconciliation result
func PrintExtraction(r *types.ExtractionResult) {
	PrintHeader("Reconciliation")
	PrintKeyValue("Pattern", orNone(r.Pattern))
	PrintKeyValue("Topic", r.Topic)
	PrintKeyValue("Date", orNone(r.Date))
	PrintKeyValue("Time", orNone(r.Time))
	PrintNewline()
}

func orNone(s *string) string {
	if s == nil {
		return DimStyle.Render("none")
	}
	return *s
}
