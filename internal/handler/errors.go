package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// notFoundBody returns an errorResponse for a missing resource.
// The caller supplies the human-readable message (e.g. "viewpoint not found")
// because the handler is the layer that knows what was being looked up.
func notFoundBody(message string) errorResponse {
	return errorResponse{Error: errorDetail{Code: "not_found", Message: message}}
}

// internalErrorBody returns a generic 500 body. It never carries the
// underlying error text.
func internalErrorBody(message string) errorResponse {
	return errorResponse{Error: errorDetail{Code: "internal_error", Message: message}}
}

// serverError logs err with the operation name, reports it, and writes a
// generic 500 with message.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, operation, message string, err error) {
	slog.ErrorContext(r.Context(), "request failed",
		"operation", operation,
		"error", err,
	)
	if s.reporter != nil {
		s.reporter.CaptureRequestError(r, operation, err)
	}
	writeJSON(w, http.StatusInternalServerError, internalErrorBody(message))
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("unable to write response body", "error", err)
	}
}
