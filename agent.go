/*
agent is a client-side gateway for the Herd assistant backend. It owns the
conversation session, consumes the streamed assistant response, recognizes
directives embedded in assistant text, and coordinates detached research
jobs by polling. The surrounding application supplies a UI implementation
to receive side effects; it never mutates gateway state directly.
*/
package agent

import (
	// Packages
	schema "github.com/getherd/go-agent/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// UI is implemented by the host application. All methods are invoked from
// gateway goroutines and must not block; a nil UI is treated as a no-op.
type UI interface {
	// MessagesChanged is invoked whenever the message list is mutated,
	// including once per streamed delta applied to the trailing message.
	MessagesChanged()

	// ShowProfile displays a user profile fetched from a user-reference
	// directive.
	ShowProfile(user schema.User)

	// ShowMeetingForm opens the meeting-creation affordance, optionally
	// pre-populated. A zero MeetingData opens an empty form.
	ShowMeetingForm(data schema.MeetingData)

	// ShowPastTasks displays the bounded task list fetched from a
	// past-count directive.
	ShowPastTasks(tasks []schema.Task)

	// ResearchStarted is invoked exactly once per request id when a
	// research directive registers a new job.
	ResearchStarted(requestID string)

	// ResearchProgress reports the topic under research while the job
	// is still pending.
	ResearchProgress(requestID, topic string)

	// ResearchCompleted is invoked once when the job completes; the
	// download URL points at the result document.
	ResearchCompleted(requestID, downloadURL string)

	// ResearchClosed is invoked when the job is closed, either by the
	// user or administratively by the backend.
	ResearchClosed(requestID string)

	// Notify surfaces a transient, non-blocking notification.
	Notify(text string)

	// Attention raises a browser-level attention notification, used by
	// the daily digest when pending items exist.
	Attention(title, body string)
}

///////////////////////////////////////////////////////////////////////////////
// NO-OP UI

type nopUI struct{}

func (nopUI) MessagesChanged()                      {}
func (nopUI) ShowProfile(schema.User)               {}
func (nopUI) ShowMeetingForm(schema.MeetingData)    {}
func (nopUI) ShowPastTasks([]schema.Task)           {}
func (nopUI) ResearchStarted(string)                {}
func (nopUI) ResearchProgress(string, string)       {}
func (nopUI) ResearchCompleted(string, string)      {}
func (nopUI) ResearchClosed(string)                 {}
func (nopUI) Notify(string)                         {}
func (nopUI) Attention(string, string)              {}

// NopUI returns a UI implementation that discards all events.
func NopUI() UI {
	return nopUI{}
}
