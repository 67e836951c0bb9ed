package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Instance  string    `json:"instance"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}

// Pinger reports storage reachability for the readiness probe
type Pinger interface {
	Health(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	startTime time.Time
	version   string
	instance  string
	db        Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, instance string, db Pinger) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		version:   version,
		instance:  instance,
		db:        db,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "wabridge",
		Version:   h.version,
		Instance:  h.instance,
		Timestamp: time.Now(),
		Uptime:    time.Since(h.startTime).String(),
	})
}

// Ready handles GET /ready (readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok"}
	status := http.StatusOK
	state := "ready"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Health(ctx); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
	}

	writeJSON(w, status, map[string]any{
		"status": state,
		"checks": checks,
	})
}
