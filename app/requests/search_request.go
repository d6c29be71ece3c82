package requests

// SearchRequest is an address lookup from the signature entry screen.
type SearchRequest struct {
	// Query is the raw address fragment as typed; normalization happens
	// server side so every client searches the same way.
	Query string `json:"query" binding:"required"`
	// Limit caps the result list. Zero or out-of-range values fall back
	// to the configured default.
	Limit int `json:"limit,omitempty"`
}

// NameSearchRequest blends name and address similarity. At least one of
// last_name or address must be usable after normalization.
type NameSearchRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Address   string `json:"address,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}
