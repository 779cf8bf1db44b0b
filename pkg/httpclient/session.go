package httpclient

import (
	"context"
	"net/http"

	// Packages
	client "github.com/mutablelogic/go-client"
	agent "github.com/getherd/go-agent"
	schema "github.com/getherd/go-agent/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Session returns the current session identifier, creating a session when
// none exists. IsNew reports whether the session was created by this call.
func (c *Client) Session(ctx context.Context) (*schema.Session, error) {
	var resp schema.Session
	if err := c.DoWithContext(ctx, client.NewRequest(), &resp, client.OptPath("agent", "sessionid")); err != nil {
		return nil, err
	}
	if !resp.Valid() {
		return nil, agent.ErrInternalServerError.With("empty session identifier")
	}
	return &resp, nil
}

// RefreshSession discards the current session and returns the replacement
// session identifier.
func (c *Client) RefreshSession(ctx context.Context) (*schema.Session, error) {
	var resp schema.RefreshResponse
	req, err := client.NewJSONRequestEx(http.MethodPut, struct{}{}, "")
	if err != nil {
		return nil, err
	}
	if err := c.DoWithContext(ctx, req, &resp, client.OptPath("agent", "refresh-session")); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, agent.ErrInternalServerError.With("empty session identifier")
	}
	return &schema.Session{ID: resp.ID, IsNew: true}, nil
}

// History returns the stored transcript of the current session, oldest
// first.
func (c *Client) History(ctx context.Context) ([]schema.Message, error) {
	var resp schema.HistoryResponse
	if err := c.DoWithContext(ctx, client.NewRequest(), &resp, client.OptPath("agent", "history")); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}
