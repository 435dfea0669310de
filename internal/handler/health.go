package handler

import (
	"net/http"
	"time"

	"github.com/pkordes/viewpoint-explorer/backend/spec"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// GetHealth handles GET /health and GET /healthz.
// It returns HTTP 200 with {"status":"ok","timestamp":...} when the server is
// running. It does not touch the database.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
