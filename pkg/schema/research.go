package schema

////////////////////////////////////////////////////////////////////////////////
// TYPES

// ResearchStatus is the state of a detached research job as reported by
// the status endpoint.
type ResearchStatus struct {
	Status       []string `json:"status"`
	Query        string   `json:"query"`
	DownloadLink string   `json:"downloadlink,omitempty"`
}

// ResearchStatusRequest identifies the job being queried or closed.
type ResearchStatusRequest struct {
	RequestID string `json:"requestId"`
}

// ResearchStatusResponse is the envelope of the status endpoint. A closed
// job is reported through the Error field rather than a status code.
type ResearchStatusResponse struct {
	Success bool            `json:"success"`
	Data    *ResearchStatus `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// CONSTANTS

// Research job lifecycle states
const (
	StatusPending   = "PENDING"
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusClosed    = "CLOSED"
)

// ResearchClosedError is the exact error string the backend returns for an
// administratively closed job. Treated as a frozen contract.
const ResearchClosedError = "Research request is closed"

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Completed reports whether the leading status code marks the job done.
func (s ResearchStatus) Completed() bool {
	return len(s.Status) > 0 && s.Status[0] == StatusCompleted
}
