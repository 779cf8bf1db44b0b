package httpclient

import (
	"context"

	// Packages
	client "github.com/mutablelogic/go-client"
	agent "github.com/getherd/go-agent"
	schema "github.com/getherd/go-agent/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ResearchStatus returns the current state of a background research job.
// A job the backend has discarded returns ErrJobClosed.
func (c *Client) ResearchStatus(ctx context.Context, requestID string) (*schema.ResearchStatus, error) {
	if requestID == "" {
		return nil, agent.ErrBadParameter.With("requestID")
	}
	var resp schema.ResearchStatusResponse
	req, err := client.NewJSONRequest(schema.ResearchStatusRequest{RequestID: requestID})
	if err != nil {
		return nil, err
	}
	if err := c.DoWithContext(ctx, req, &resp, client.OptPath("tasks", "get-research-status")); err != nil {
		return nil, err
	}
	if resp.Error == schema.ResearchClosedError {
		return nil, agent.ErrJobClosed
	} else if resp.Error != "" {
		return nil, agent.ErrInternalServerError.With(resp.Error)
	} else if resp.Data == nil {
		return nil, agent.ErrInternalServerError.With("empty status")
	}
	return resp.Data, nil
}

// CloseResearch tells the backend to discard a research job. Subsequent
// status calls for the same id will report the job closed.
func (c *Client) CloseResearch(ctx context.Context, requestID string) error {
	if requestID == "" {
		return agent.ErrBadParameter.With("requestID")
	}
	var resp schema.ResearchStatusResponse
	req, err := client.NewJSONRequest(schema.ResearchStatusRequest{RequestID: requestID})
	if err != nil {
		return err
	}
	if err := c.DoWithContext(ctx, req, &resp, client.OptPath("tasks", "close-research")); err != nil {
		return err
	}
	if resp.Error != "" && resp.Error != schema.ResearchClosedError {
		return agent.ErrInternalServerError.With(resp.Error)
	}
	return nil
}
