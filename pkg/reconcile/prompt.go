package reconcile

import (
	"encoding/json"
	"strings"

	"github.com/beam-cloud/emailreader/pkg/types"
)

// Section is one labelled segment of a reconciliation prompt
type Section struct {
	Name string
	Text string
}

// Prompt is an ordered list of sections sent to the model as one message
type Prompt struct {
	Sections []Section
}

// String joins the sections in order
func (p Prompt) String() string {
	parts := make([]string, 0, len(p.Sections))
	for _, s := range p.Sections {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, "\n\n")
}

// Section returns the text of the named section
func (p Prompt) Section(name string) (string, bool) {
	for _, s := range p.Sections {
		if s.Name == name {
			return s.Text, true
		}
	}
	return "", false
}

const (
	SectionContext      = "context"
	SectionPatterns     = "patterns"
	SectionScheduled    = "scheduled"
	SectionEmails       = "emails"
	SectionInstructions = "instructions"
)

const contextText = `Context:
- This is a scheduling application that helps users manage their tasks and appointments.
- Patterns are objects that the user makes to help organize tasks.
Patterns:`

const scheduledHeader = "Here are the other items that the user has scheduled:"

const emailsHeader = "Additionally, here are emails that the user has received:"

const instructionsText = `Your job:
Respond with exactly one JSON object and nothing else, with the keys "pattern", "topic", "date" and "time".
The matching pattern, if available, goes in "pattern". The topic goes in "topic". The date goes in "date". The time goes in "time".
Search the emails for both a date and time. If there is no date or no time, make the JSON value null.
If you find both a date and time, look at the patterns and see if the event matches any of the patterns. If none match, "pattern" is null.
Prefer the vocabulary of the patterns and their aliases over the wording of the email.
For example, if there are tasks or patterns that use "HW" instead of "homework", and the email mentions "homework", use "HW" instead.
If possible, respond with the matching pattern, the topic, the date, and the time in this JSON format.`

type promptEmail struct {
	ID      string  `json:"id"`
	Subject string  `json:"subject"`
	From    string  `json:"from"`
	Date    string  `json:"date"`
	Summary *string `json:"summary,omitempty"`
	Body    string  `json:"body,omitempty"`
}

// BuildPrompt assembles the extraction request from the user's patterns, their
// already scheduled items and a fetched batch.
func BuildPrompt(patterns []types.Pattern, scheduled []types.ScheduledItem, emails []*types.EmailMessage) Prompt {
	if patterns == nil {
		patterns = []types.Pattern{}
	}
	if scheduled == nil {
		scheduled = []types.ScheduledItem{}
	}

	batch := make([]promptEmail, 0, len(emails))
	for _, msg := range emails {
		view := msg.View()
		batch = append(batch, promptEmail{
			ID:      view.ID,
			Subject: view.Subject,
			From:    view.From,
			Date:    view.Date,
			Summary: view.Summary,
			Body:    msg.Content(),
		})
	}

	return Prompt{Sections: []Section{
		{Name: SectionContext, Text: contextText},
		{Name: SectionPatterns, Text: mustJSON(patterns)},
		{Name: SectionScheduled, Text: scheduledHeader + "\n" + mustJSON(scheduled)},
		{Name: SectionEmails, Text: emailsHeader + "\n" + mustJSON(batch)},
		{Name: SectionInstructions, Text: instructionsText},
	}}
}

// mustJSON marshals values built from plain structs, which cannot fail
func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(b)
}
