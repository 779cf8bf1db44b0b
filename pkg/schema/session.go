package schema

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Session identifies the server-side conversation context. Replacing the
// session discards all prior context; the gateway holds exactly one.
type Session struct {
	ID    string `json:"sessionId"`
	IsNew bool   `json:"isNewSession,omitempty"`
}

// RefreshResponse is returned by the refresh-session endpoint.
type RefreshResponse struct {
	ID string `json:"sessionId"`
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Valid reports whether the session carries an identifier.
func (s Session) Valid() bool {
	return s.ID != ""
}
