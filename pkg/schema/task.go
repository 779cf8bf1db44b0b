package schema

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Task is one open task, as listed in the daily digest and in the bounded
// past-task lookup keyed by a meeting context.
type Task struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Status         string  `json:"status,omitempty"`
	Priority       string  `json:"priority,omitempty"`
	DueDate        string  `json:"duedate,omitempty"`
	EstimatedHours float64 `json:"estimated_hours,omitempty"`
	Category       string  `json:"category,omitempty"`
	OwnerName      string  `json:"owner_name,omitempty"`
}

// PastTasksRequest keys the bounded task lookup by meeting and user.
type PastTasksRequest struct {
	MeetingID string `json:"meetingId"`
	UserID    string `json:"userId"`
}

// PastTasksResponse is the envelope of the past-task lookup.
type PastTasksResponse struct {
	Success bool   `json:"success"`
	Tasks   []Task `json:"tasks"`
	Error   string `json:"error,omitempty"`
}
