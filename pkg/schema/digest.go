package schema

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Opportunity is one open CRM opportunity in the daily digest.
type Opportunity struct {
	ID                string  `json:"opp_id"`
	Name              string  `json:"opp_name"`
	Description       string  `json:"opp_description,omitempty"`
	Stage             string  `json:"stage_name,omitempty"`
	Amount            float64 `json:"amount,omitempty"`
	Probability       int     `json:"probability,omitempty"`
	ExpectedCloseDate string  `json:"expected_close_date,omitempty"`
	LeadSource        string  `json:"lead_source,omitempty"`
}

// Approval is one workflow instance awaiting the user's approval.
type Approval struct {
	ID                   string `json:"id"`
	WorkflowName         string `json:"workflow_name"`
	WorkflowInstanceID   string `json:"workflow_instance_id,omitempty"`
	WorkflowDefinitionID string `json:"workflow_definition_id,omitempty"`
	Status               string `json:"status,omitempty"`
	CreatedAt            string `json:"created_at,omitempty"`
}

// Digest is the once-per-day overview of pending items for a user.
type Digest struct {
	OpenTasks         []Task        `json:"openTask"`
	OpenOpportunities []Opportunity `json:"openOpportunity"`
	Approvals         []Approval    `json:"approveList"`
}

// DigestResponse is the envelope of the digest endpoint.
type DigestResponse struct {
	Success bool    `json:"success"`
	Data    *Digest `json:"data,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Total returns the number of items requiring attention across all sections.
func (d Digest) Total() int {
	return len(d.OpenTasks) + len(d.OpenOpportunities) + len(d.Approvals)
}
