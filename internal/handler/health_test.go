package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/viewpoint-explorer/backend/internal/handler"
	"github.com/pkordes/viewpoint-explorer/backend/spec"
)

// TestGetHealth_returns200WithOKStatus verifies that both health paths return
// HTTP 200 and a JSON body of {"status":"ok","timestamp":...}.
func TestGetHealth_returns200WithOKStatus(t *testing.T) {
	for _, path := range []string{"/health", "/healthz"} {
		t.Run(path, func(t *testing.T) {
			h := handler.NewHealthHandler().Routes()

			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body struct {
				Status    string `json:"status"`
				Timestamp string `json:"timestamp"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			require.Equal(t, "ok", body.Status)
			ts, err := time.Parse(time.RFC3339, body.Timestamp)
			require.NoError(t, err, "timestamp is RFC 3339")
			assert.WithinDuration(t, time.Now(), ts, time.Minute)
		})
	}
}

func TestGetOpenAPI_servesEmbeddedDocument(t *testing.T) {
	h := handler.NewHealthHandler().Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Equal(t, spec.OpenAPI, rec.Body.Bytes())
	assert.Contains(t, rec.Body.String(), "/api/viewpoints/{id}")
}

func TestUnknownRoute_returnsJSON404(t *testing.T) {
	h := handler.NewHealthHandler().Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"not_found","message":"route not found"}}`, rec.Body.String())
}
