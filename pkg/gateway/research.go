package gateway

import (
	"context"

	// Packages
	agent "github.com/getherd/go-agent"
	directive "github.com/getherd/go-agent/pkg/directive"
	research "github.com/getherd/go-agent/pkg/research"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// CloseResearch discards a research job on the backend, stops polling it
// and purges its tagged messages from the transcript.
func (g *Gateway) CloseResearch(ctx context.Context, requestID string) error {
	err := g.poller.Close(ctx, requestID)
	g.purge(requestID)
	g.ui.ResearchClosed(requestID)
	return err
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// handleResearchEvent receives poller events, on the poller's goroutine.
func (g *Gateway) handleResearchEvent(e research.Event) {
	switch e.Kind {
	case research.Progress:
		g.ui.ResearchProgress(e.RequestID, e.Query)
	case research.Completed:
		g.completeResearch(e.RequestID)
		g.ui.ResearchCompleted(e.RequestID, e.DownloadLink)
	case research.Closed:
		// Administratively closed by the backend; drop its messages
		g.purge(e.RequestID)
		g.ui.ResearchClosed(e.RequestID)
	case research.Expired:
		g.ui.Notify(agent.ErrJobExpired.Error())
	case research.Warning:
		// Transient poll failure; the poller keeps going
		g.ui.Notify(e.Err.Error())
	}
}

// completeResearch swaps the message carrying the job's request marker for
// the completion text. The poller has already stopped the job, so input is
// accepted again.
func (g *Gateway) completeResearch(requestID string) {
	g.mu.Lock()
	for i := range g.messages {
		for _, id := range directive.RequestIDs(g.messages[i].Text) {
			if id == requestID {
				g.messages[i].Text = directive.CompletedText
				break
			}
		}
	}
	g.mu.Unlock()
	g.ui.MessagesChanged()
}

// purge removes every message tagged to a job, leaving the rest of the
// transcript untouched.
func (g *Gateway) purge(requestID string) {
	ids := g.tracker.Drop(requestID)

	g.mu.Lock()
	if len(ids) > 0 {
		kept := g.messages[:0]
		for _, msg := range g.messages {
			if !ids[msg.ID] {
				kept = append(kept, msg)
			}
		}
		g.messages = kept
	}
	g.mu.Unlock()
	g.ui.MessagesChanged()
}
