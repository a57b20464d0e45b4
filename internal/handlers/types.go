package handlers

// CreateMinimalRequest is the body of POST /strategies/minimal. An empty goal
// is allowed; an empty id is rejected by the catalog.
type CreateMinimalRequest struct {
	ID   string `json:"id"`
	Goal string `json:"goal"`
}

// MessageResponse wraps a confirmation line.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
