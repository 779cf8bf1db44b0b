package schema

////////////////////////////////////////////////////////////////////////////////
// TYPES

// User is the profile resolved from a user-reference directive.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// UserRequest identifies the user to resolve.
type UserRequest struct {
	UserID string `json:"userId"`
}

// UserResponse is the envelope of the user lookup endpoint.
type UserResponse struct {
	User  User   `json:"user"`
	Error string `json:"error,omitempty"`
}
