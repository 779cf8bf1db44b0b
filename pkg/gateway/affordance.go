package gateway

import (
	"context"
	"strings"

	// Packages
	agent "github.com/getherd/go-agent"
	directive "github.com/getherd/go-agent/pkg/directive"
	schema "github.com/getherd/go-agent/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// OpenUserProfile resolves a user-reference directive and shows the
// profile.
func (g *Gateway) OpenUserProfile(ctx context.Context, userID string) error {
	user, err := g.backend.User(ctx, userID)
	if err != nil {
		g.ui.Notify("Could not load the user profile")
		return err
	}
	g.ui.ShowProfile(*user)
	return nil
}

// OpenPastTasks resolves a past-count directive's context id, a
// "meetingId,userId" pair, and shows the bounded task list.
func (g *Gateway) OpenPastTasks(ctx context.Context, contextID string) error {
	meetingID, userID, ok := strings.Cut(contextID, ",")
	if !ok || meetingID == "" || userID == "" {
		return agent.ErrBadParameter.Withf("context %q", contextID)
	}
	tasks, err := g.backend.PastOpenTasks(ctx, strings.TrimSpace(meetingID), strings.TrimSpace(userID))
	if err != nil {
		g.ui.Notify("Could not load past tasks")
		return err
	}
	g.ui.ShowPastTasks(tasks)
	return nil
}

// OpenMeetingPrefill expands a meeting-prefill directive's payload into
// form fields and opens the meeting form with them.
func (g *Gateway) OpenMeetingPrefill(ctx context.Context, payload string) error {
	data, err := g.backend.ParseMeetingData(ctx, payload)
	if err != nil {
		g.ui.Notify("Could not pre-populate the meeting form")
		return err
	}
	g.ui.ShowMeetingForm(*data)
	return nil
}

// AcceptResearchPrompt answers a confirm-prompt directive affirmatively by
// submitting the derived research turn.
func (g *Gateway) AcceptResearchPrompt(ctx context.Context, topic string) error {
	return g.Send(ctx, directive.ResearchTurn(topic))
}

// SubmitMeetingForm sends the collected meeting fields back to the
// assistant as a formatted turn, closing the round trip the meeting form
// opened.
func (g *Gateway) SubmitMeetingForm(ctx context.Context, data schema.MeetingData) error {
	return g.Send(ctx, data.Turn())
}
