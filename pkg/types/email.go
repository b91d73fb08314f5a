package types

import "sync"

// NoSubject is used when a message has no Subject header
const NoSubject = "(No subject)"

// EmailMessage is a fetched and parsed inbox message
type EmailMessage struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id,omitempty"`
	Subject  string `json:"subject"`
	From     string `json:"from"`
	To       string `json:"to,omitempty"`
	Date     string `json:"date"`
	Snippet  string `json:"snippet"`
	Body     string `json:"body"`

	summary     *string
	summaryOnce sync.Once
}

// SetSummary sets the summary. Only the first call has an effect; it reports
// whether this call set the value.
func (m *EmailMessage) SetSummary(s string) bool {
	set := false
	m.summaryOnce.Do(func() {
		m.summary = &s
		set = true
	})
	return set
}

// Summary returns the summary and whether one was set
func (m *EmailMessage) Summary() (string, bool) {
	if m.summary == nil {
		return "", false
	}
	return *m.summary, true
}

// Content returns the body, or the snippet when the body is empty
func (m *EmailMessage) Content() string {
	if m.Body != "" {
		return m.Body
	}
	return m.Snippet
}

// EmailView is the serialized form delivered to presentation and prompts
type EmailView struct {
	ID      string  `json:"id"`
	Subject string  `json:"subject"`
	From    string  `json:"from"`
	Date    string  `json:"date"`
	Snippet string  `json:"snippet,omitempty"`
	Body    string  `json:"body,omitempty"`
	Summary *string `json:"summary,omitempty"`
}

// View returns a copy safe to serialize
func (m *EmailMessage) View() EmailView {
	v := EmailView{
		ID:      m.ID,
		Subject: m.Subject,
		From:    m.From,
		Date:    m.Date,
		Snippet: m.Snippet,
		Body:    m.Body,
	}
	if s, ok := m.Summary(); ok {
		v.Summary = &s
	}
	return v
}
