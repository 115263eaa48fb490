package models

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message string `json:"message"`
	Mode    Mode   `json:"mode"`
}

// ChatResponse is the body of a successful exchange
type ChatResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is the body the backend returns with a non-2xx status
type ErrorResponse struct {
	Error string `json:"error"`
}
