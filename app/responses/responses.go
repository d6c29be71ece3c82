package responses

import (
	"github.com/petition-qc/app/models"
)

// SearchResponse is the ordered candidate list for one lookup.
type SearchResponse struct {
	Query   string              `json:"query"`
	Count   int                 `json:"count"`
	Results []models.VoterMatch `json:"results"`
}

// SessionResponse returns the batch now active for the caller.
type SessionResponse struct {
	Batch   *models.Batch `json:"batch"`
	Message string        `json:"message,omitempty"`
}

// RecordSignatureResponse acknowledges one recorded decision. Cleared
// tells the entry screen it may blank the search field.
type RecordSignatureResponse struct {
	SignatureID string `json:"signature_id"`
	BatchID     string `json:"batch_id"`
	Cleared     bool   `json:"cleared"`
}

// BookCheckResponse reports whether a book label is already known.
type BookCheckResponse struct {
	Exists bool         `json:"exists"`
	Book   *models.Book `json:"book,omitempty"`
}

// CollectorListResponse is the session setup pick list.
type CollectorListResponse struct {
	Collectors []models.Collector `json:"collectors"`
	Count      int                `json:"count"`
}

// ImportResponse acknowledges an import job launch.
type ImportResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// HealthResponse reports service health for the probes.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Services  map[string]string `json:"services,omitempty"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
