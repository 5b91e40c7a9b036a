package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthHandler reports liveness and the state of optional backends.
type HealthHandler struct {
	// Named dependency checks, e.g. "postgres" -> db.PingContext.
	Checks map[string]func(ctx context.Context) error
}

// Health answers 200 when every check passes and 503 otherwise.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.Checks))
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			components[name] = "down: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	res := map[string]any{"status": "ok", "components": components}
	if status != http.StatusOK {
		res["status"] = "degraded"
	}
	writeJSON(w, r, status, res)
}
