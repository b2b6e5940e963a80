package handler

import (
	"net/http"
	"time"
)

// Service identity reported by the health check.
const (
	ServiceName    = "BelekBox.kg"
	ServiceVersion = "1.0.0"
)

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
}

// Health handles GET /api/health requests.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
		Service:   ServiceName,
		Version:   ServiceVersion,
	})
}
