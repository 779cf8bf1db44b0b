package gateway

import (
	"context"
	"fmt"
	"strings"

	// Packages
	agent "github.com/getherd/go-agent"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const digestDayFormat = "2006-01-02"

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// DigestTick surfaces the daily digest at most once per calendar day. Call
// it on any schedule; calls on a day the digest was already shown, or
// dismissed, do nothing. An attention notification is raised only when
// pending items exist.
func (g *Gateway) DigestTick(ctx context.Context) error {
	if g.userID == "" {
		return agent.ErrBadParameter.With("no user configured")
	}

	day := g.now().Format(digestDayFormat)
	if g.prefs.DigestShown(g.userID, day) {
		return nil
	}

	digest, err := g.backend.Digest(ctx, g.userID)
	if err != nil {
		return err
	}
	if err := g.prefs.MarkDigestShown(g.userID, day); err != nil {
		return err
	}
	if digest.Total() == 0 {
		return nil
	}

	var parts []string
	if n := len(digest.OpenTasks); n > 0 {
		parts = append(parts, fmt.Sprintf("%d open tasks", n))
	}
	if n := len(digest.OpenOpportunities); n > 0 {
		parts = append(parts, fmt.Sprintf("%d open opportunities", n))
	}
	if n := len(digest.Approvals); n > 0 {
		parts = append(parts, fmt.Sprintf("%d pending approvals", n))
	}
	g.ui.Attention("Daily digest", strings.Join(parts, ", "))
	return nil
}

// DismissDigest suppresses the digest for the rest of the day.
func (g *Gateway) DismissDigest() error {
	if g.userID == "" {
		return agent.ErrBadParameter.With("no user configured")
	}
	return g.prefs.MarkDigestShown(g.userID, g.now().Format(digestDayFormat))
}
