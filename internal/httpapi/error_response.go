package httpapi

import "net/http"

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError writes a client-facing error with the given status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorBody{Error: msg})
}

// WriteInternalError reports an unexpected failure as a 500.
func WriteInternalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: "internal server error", Message: err.Error()})
}
