package requests

// StartSessionRequest opens a data-entry session for one physical
// petition book.
type StartSessionRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	BookNumber  string `json:"book_number" binding:"required"`
	CollectorID string `json:"collector_id" binding:"required"`
}

// EndSessionRequest closes the caller's active session.
type EndSessionRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// RecordSignatureRequest records one classification decision against the
// caller's active batch. VoterID is required for person_match in spirit
// but enforced as optional: address_only may carry a best guess and
// no_match never carries one.
type RecordSignatureRequest struct {
	UserID         string `json:"user_id" binding:"required"`
	Classification string `json:"classification" binding:"required"`
	VoterID        string `json:"voter_id,omitempty"`
	RawText        string `json:"raw_text,omitempty"`
}

// CreateCollectorRequest registers a collector for the session pick list.
type CreateCollectorRequest struct {
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	OrganizationID string `json:"organization_id,omitempty"`
}
