package relay

// LookupRequest is the validated input of GET /csr.
type LookupRequest struct {
	Gamertag string `form:"gt"`
	Playlist string `form:"playlist"`
}

// CsrResult is the normalized reply. Null fields are always serialized.
type CsrResult struct {
	CSR  *int    `json:"csr"`
	Tier *string `json:"tier"`
}

// ErrorResponse is the JSON error body. Status and Body carry the upstream
// reply for single-hop upstream failures only.
type ErrorResponse struct {
	Error  string  `json:"error"`
	Status *int    `json:"status,omitempty"`
	Body   *string `json:"body,omitempty"`
}
