package gateway

import (
	"context"
	"fmt"

	// Packages
	directive "github.com/getherd/go-agent/pkg/directive"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Entry points invoked from elsewhere in the application. Each starts a
// fresh session so the prior conversation cannot color the answer, then
// submits a canned opening turn.

// PrepareMeeting opens a conversation about an upcoming meeting. The
// annotation span carries the meeting id for the backend; it is stripped
// before the turn is displayed.
func (g *Gateway) PrepareMeeting(ctx context.Context, meetingID, title string) error {
	if err := g.refresh(ctx); err != nil {
		return err
	}
	turn := fmt.Sprintf("[PREPARE_MEETING]%s[/PREPARE_MEETING]\nHelp me prepare for the upcoming meeting: %q.", meetingID, title)
	return g.sendTurn(ctx, turn, true)
}

// StartResearch opens a conversation that requests research on a topic.
func (g *Gateway) StartResearch(ctx context.Context, topic string) error {
	if err := g.refresh(ctx); err != nil {
		return err
	}
	return g.sendTurn(ctx, directive.ResearchTurn(topic), true)
}

// DiscussTask opens a conversation about a task by its title.
func (g *Gateway) DiscussTask(ctx context.Context, title string) error {
	if err := g.refresh(ctx); err != nil {
		return err
	}
	return g.sendTurn(ctx, title, true)
}

// CreateMeetingTopic opens a conversation from a proposed meeting topic.
func (g *Gateway) CreateMeetingTopic(ctx context.Context, topic string) error {
	if err := g.refresh(ctx); err != nil {
		return err
	}
	return g.sendTurn(ctx, topic, true)
}

// ShouldAutoOpen reports whether the assistant should open itself for the
// configured user: once, and never after a manual close.
func (g *Gateway) ShouldAutoOpen() bool {
	return g.prefs.ShouldAutoOpen(g.userID)
}

// MarkOpened records that the assistant was auto-opened.
func (g *Gateway) MarkOpened() error {
	return g.prefs.MarkOpened(g.userID)
}

// MarkManuallyClosed records that the user dismissed the assistant, which
// suppresses future auto-opens.
func (g *Gateway) MarkManuallyClosed() error {
	return g.prefs.MarkManuallyClosed(g.userID)
}
