package requests

// ImportRequest launches an async voter-file import. Path is a file
// visible to the server; Replace truncates the registry first.
type ImportRequest struct {
	Path    string `json:"path" binding:"required"`
	Replace bool   `json:"replace,omitempty"`
}
