package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	reply   string
	err     error
	block   bool
	prompts []string
}

func (m *fakeModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.reply, m.err
}

func newMessage() *types.EmailMessage {
	return &types.EmailMessage{
		ID:      "m1",
		Subject: "Project sync",
		From:    "alice@example.com",
		Date:    "Mon, 4 Mar 2024 09:00:00 +0000",
		Snippet: "Meeting moved",
		Body:    "The meeting moved to March 5 at 3pm.",
	}
}

func TestSummarize_SetsSummary(t *testing.T) {
	model := &fakeModel{reply: "Meeting moved. Date: March 5 Time: 3pm"}
	p := NewPipeline(model, time.Second)
	msg := newMessage()

	p.Summarize(context.Background(), msg)

	summary, ok := msg.Summary()
	require.True(t, ok)
	assert.Equal(t, "Meeting moved. Date: March 5 Time: 3pm", summary)
	require.Len(t, model.prompts, 1)
	assert.True(t, strings.HasSuffix(model.prompts[0], msg.Body))
	assert.Contains(t, model.prompts[0], "one sentence")
	assert.Contains(t, model.prompts[0], "do not write anything")
}

func TestSummarize_FailureLeavesSummaryUnset(t *testing.T) {
	p := NewPipeline(&fakeModel{err: errors.New("rate limited")}, time.Second)
	msg := newMessage()

	p.Summarize(context.Background(), msg)

	_, ok := msg.Summary()
	assert.False(t, ok)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "Project sync", msg.Subject)
	assert.Equal(t, "alice@example.com", msg.From)
	assert.Equal(t, "The meeting moved to March 5 at 3pm.", msg.Body)
}

func TestSummarize_EmptyReplyLeavesSummaryUnset(t *testing.T) {
	p := NewPipeline(&fakeModel{reply: ""}, time.Second)
	msg := newMessage()

	p.Summarize(context.Background(), msg)

	_, ok := msg.Summary()
	assert.False(t, ok)
}

func TestSummarize_Timeout(t *testing.T) {
	p := NewPipeline(&fakeModel{block: true}, 20*time.Millisecond)
	msg := newMessage()

	start := time.Now()
	p.Summarize(context.Background(), msg)

	assert.Less(t, time.Since(start), time.Second)
	_, ok := msg.Summary()
	assert.False(t, ok)
}

func TestSummarize_SkipsEmptyContent(t *testing.T) {
	model := &fakeModel{reply: "unused"}
	p := NewPipeline(model, time.Second)
	msg := &types.EmailMessage{ID: "empty"}

	p.Summarize(context.Background(), msg)

	assert.Empty(t, model.prompts)
	_, ok := msg.Summary()
	assert.False(t, ok)
}

func TestSummarize_UsesSnippetWhenNoBody(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	p := NewPipeline(model, time.Second)
	msg := &types.EmailMessage{ID: "s", Snippet: "only the snippet"}

	p.Summarize(context.Background(), msg)

	require.Len(t, model.prompts, 1)
	assert.True(t, strings.HasSuffix(model.prompts[0], "only the snippet"))
}

func TestPipeline_Disabled(t *testing.T) {
	p := NewPipeline(nil, 0)
	assert.False(t, p.Enabled())
	assert.Nil(t, p.Model())

	msg := newMessage()
	p.Summarize(context.Background(), msg)
	_, ok := msg.Summary()
	assert.False(t, ok)

	var nilPipeline *Pipeline
	assert.False(t, nilPipeline.Enabled())
}

func TestPipeline_DefaultTimeout(t *testing.T) {
	p := NewPipeline(&fakeModel{}, 0)
	assert.True(t, p.Enabled())
	assert.Equal(t, DefaultTimeout, p.timeout)
}

type panicModel struct{}

func (panicModel) Generate(context.Context, string) (string, error) {
	panic("sdk exploded")
}

func TestSummarize_PanicLeavesSummaryUnset(t *testing.T) {
	p := NewPipeline(panicModel{}, time.Second)
	msg := newMessage()

	assert.NotPanics(t, func() { p.Summarize(context.Background(), msg) })
	_, ok := msg.Summary()
	assert.False(t, ok)
}

func TestSummarize_CachedByMessageID(t *testing.T) {
	model := &fakeModel{reply: "Meeting moved."}
	p := NewPipeline(model, time.Second)

	first, second := newMessage(), newMessage()
	p.Summarize(context.Background(), first)
	p.Summarize(context.Background(), second)

	require.Len(t, model.prompts, 1)
	summary, ok := second.Summary()
	require.True(t, ok)
	assert.Equal(t, "Meeting moved.", summary)
}

func TestSummarize_FailureIsNotCached(t *testing.T) {
	model := &fakeModel{err: errors.New("rate limited")}
	p := NewPipeline(model, time.Second)

	p.Summarize(context.Background(), newMessage())
	model.err = nil
	model.reply = "Meeting moved."

	msg := newMessage()
	p.Summarize(context.Background(), msg)

	assert.Len(t, model.prompts, 2)
	summary, ok := msg.Summary()
	require.True(t, ok)
	assert.Equal(t, "Meeting moved.", summary)
}
