package types

// Envelope is the uniform response body. Success is true iff Errors is nil.
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Object  any      `json:"object"`
	Errors  []string `json:"errors"`
}

// PaginatedEnvelope extends Envelope with page metadata for list endpoints.
type PaginatedEnvelope struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Object     any      `json:"object"`
	PageNumber int      `json:"pageNumber"`
	PageSize   int      `json:"pageSize"`
	TotalSize  int64    `json:"totalSize"`
	TotalPages int      `json:"totalPages"`
	Errors     []string `json:"errors"`
}
