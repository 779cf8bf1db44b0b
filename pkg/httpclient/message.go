package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
	agent "github.com/getherd/go-agent"
	schema "github.com/getherd/go-agent/pkg/schema"
	textstream "github.com/getherd/go-agent/pkg/textstream"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// SendResponse reports how the backend answered a message. ShortCircuit is
// set when the backend replied with a single JSON action instead of a
// stream, in which case no frames were delivered.
type SendResponse struct {
	ShortCircuit *schema.ShortCircuit
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// SendMessage submits a user turn and consumes the reply. Streamed frames
// are delivered to fn in order; a JSON reply short-circuits the stream and
// is returned instead. The context cancels an in-flight stream.
func (c *Client) SendMessage(ctx context.Context, message schema.MessageRequest, fn textstream.FrameFn) (*SendResponse, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("agent", "message"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", client.ContentTypeJson)
	req.Header.Set("Accept", strings.Join([]string{client.ContentTypeTextStream, client.ContentTypeJson}, ", "))
	if c.token.Scheme != "" && c.token.Value != "" {
		req.Header.Set("Authorization", c.token.String())
	}

	resp, err := c.Client.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, agent.ErrInternalServerError.With(resp.Status)
	}

	// A JSON reply carries a single action instead of a stream
	if mediatype, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && mediatype == client.ContentTypeJson {
		var action schema.ShortCircuit
		if err := json.NewDecoder(resp.Body).Decode(&action); err != nil {
			return nil, err
		}
		return &SendResponse{ShortCircuit: &action}, nil
	}

	if err := textstream.NewDecoder(resp.Body).Decode(fn); err != nil {
		return nil, err
	}
	return &SendResponse{}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// endpoint joins path elements onto the backend base URL.
func (c *Client) endpoint(path ...string) string {
	return strings.TrimSuffix(c.url, "/") + "/" + strings.Join(path, "/")
}
