/*
httpclient implements the typed HTTP client for the assistant backend. All
plain JSON endpoints go through the base client; the streaming message
endpoint uses the underlying HTTP client directly so the response body can
be consumed incrementally.
*/
package httpclient

import (
	// Packages
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client is the assistant backend HTTP client. It wraps the base HTTP
// client with typed methods for the session, message, research, digest and
// lookup endpoints.
type Client struct {
	*client.Client
	url   string
	token client.Token
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a client for the backend at url, e.g.
// "http://localhost:8084/api". The token may be empty when the backend
// does not require authentication.
func New(url, token string, opts ...client.ClientOpt) (*Client, error) {
	c := new(Client)
	c.url = url
	if token != "" {
		c.token = client.Token{Scheme: client.Bearer, Value: token}
		opts = append(opts, client.OptReqToken(c.token))
	}
	if client, err := client.New(append(opts, client.OptEndpoint(url))...); err != nil {
		return nil, err
	} else {
		c.Client = client
	}
	return c, nil
}
