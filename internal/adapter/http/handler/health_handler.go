package handler

import (
	"context"
	"net/http"
	"time"
)

// Checker reports whether a backend is reachable.
type Checker interface {
	Name() string
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	checkers []Checker
	timeout  time.Duration
}

// NewHealthHandler creates a new HealthHandler that pings every checker on
// readiness.
func NewHealthHandler(checkers ...Checker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		timeout:  5 * time.Second,
	}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if every configured backend answers a ping.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := map[string]string{"status": "ready"}
	for _, c := range h.checkers {
		if err := c.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, c.Name()+" unhealthy", err.Error())
			return
		}
		status[c.Name()] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}
