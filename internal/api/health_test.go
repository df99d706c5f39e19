package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/gigboard/gigadmin/internal/api"
)

func TestLiveness_ReturnsOK(t *testing.T) {
	t.Parallel()

	h := api.NewHealthHandler(nil, nil, testLogger(), "test-v1")

	r := gin.New()
	r.GET("/health", h.Liveness)

	w := doRequest(r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body["status"] != "ok" || body["version"] != "test-v1" {
		t.Errorf("body = %v", body)
	}

	if body["database"] != "not_configured" {
		t.Errorf("database = %v, want not_configured", body["database"])
	}

	if v, _ := body["schema_version"].(float64); v < 1 {
		t.Errorf("schema_version = %v, want at least 1", body["schema_version"])
	}
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		db   api.Pinger
		want int
	}{
		{"ready", &mockPinger{}, http.StatusOK},
		{"db down", &mockPinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable},
		{"no db", nil, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := api.NewHealthHandler(tt.db, nil, testLogger(), "v")
			r := gin.New()
			r.GET("/ready", h.Readiness)

			if w := doRequest(r, http.MethodGet, "/ready", ""); w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
