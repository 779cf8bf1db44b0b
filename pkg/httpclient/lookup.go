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

// User resolves the profile behind a user reference.
func (c *Client) User(ctx context.Context, userID string) (*schema.User, error) {
	if userID == "" {
		return nil, agent.ErrBadParameter.With("userID")
	}
	var resp schema.UserResponse
	req, err := client.NewJSONRequest(schema.UserRequest{UserID: userID})
	if err != nil {
		return nil, err
	}
	if err := c.DoWithContext(ctx, req, &resp, client.OptPath("users", "get")); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, agent.ErrNotFound.With(resp.Error)
	}
	return &resp.User, nil
}

// PastOpenTasks returns the bounded list of open tasks for a meeting and
// user pair, as referenced by a past-count directive.
func (c *Client) PastOpenTasks(ctx context.Context, meetingID, userID string) ([]schema.Task, error) {
	if meetingID == "" || userID == "" {
		return nil, agent.ErrBadParameter.With("meetingID, userID")
	}
	var resp schema.PastTasksResponse
	req, err := client.NewJSONRequest(schema.PastTasksRequest{MeetingID: meetingID, UserID: userID})
	if err != nil {
		return nil, err
	}
	if err := c.DoWithContext(ctx, req, &resp, client.OptPath("tasks", "past-open-tasks")); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, agent.ErrNotFound.With(resp.Error)
	}
	return resp.Tasks, nil
}

// Digest returns the pending-item overview for a user.
func (c *Client) Digest(ctx context.Context, userID string) (*schema.Digest, error) {
	if userID == "" {
		return nil, agent.ErrBadParameter.With("userID")
	}
	var resp schema.DigestResponse
	if err := c.DoWithContext(ctx, client.NewRequest(), &resp,
		client.OptPath("agent", "remind", "task"),
		client.OptQuery(map[string][]string{"userId": {userID}}),
	); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return &schema.Digest{}, nil
	}
	return resp.Data, nil
}

// ParseMeetingData expands a meeting-prefill payload into form fields.
func (c *Client) ParseMeetingData(ctx context.Context, payload string) (*schema.MeetingData, error) {
	var resp schema.ParseMeetingResponse
	req, err := client.NewJSONRequest(schema.ParseMeetingRequest{Message: payload})
	if err != nil {
		return nil, err
	}
	if err := c.DoWithContext(ctx, req, &resp, client.OptPath("agent", "parse-meeting-data")); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, agent.ErrInternalServerError.With(resp.Error)
	}
	return &resp.MeetingData, nil
}
