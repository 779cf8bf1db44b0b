package schema

import (
	"fmt"
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Attendee is one participant on a meeting being scheduled.
type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MeetingData carries the fields classified out of free-form text by the
// parse-meeting-data endpoint, used to pre-populate the meeting form.
type MeetingData struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Attendees   []Attendee `json:"attendees"`
}

// ParseMeetingRequest submits raw message text for classification.
type ParseMeetingRequest struct {
	Message string `json:"message"`
}

// ParseMeetingResponse is the envelope of the classification endpoint.
type ParseMeetingResponse struct {
	Success     bool        `json:"success"`
	MeetingData MeetingData `json:"meetingData"`
	Message     string      `json:"message,omitempty"`
	Error       string      `json:"error,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Turn formats the collected meeting fields as the follow-up user turn that
// asks the assistant to create the meeting.
func (m MeetingData) Turn() string {
	attendees := "No attendees"
	if len(m.Attendees) > 0 {
		names := make([]string, len(m.Attendees))
		for i, a := range m.Attendees {
			names[i] = fmt.Sprintf("%s (%s)", a.Name, a.Email)
		}
		attendees = strings.Join(names, ", ")
	}
	return fmt.Sprintf("I want to schedule a meeting with the following details:\nTitle: %s\nDescription: %s\nAttendees: %s\n\nPlease create this meeting for me.",
		m.Title, m.Description, attendees)
}
