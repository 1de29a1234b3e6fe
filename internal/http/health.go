package http

import (
	"context"
	"net/http"
)

// HealthHandler reports 503 when check fails. details, if set, adds fields
// to the response body.
func HealthHandler(check func(ctx context.Context) error, details func() map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"status": "ok"}
		status := http.StatusOK
		if check != nil {
			if err := check(r.Context()); err != nil {
				body["status"] = "unhealthy"
				body["error"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		if details != nil {
			for k, v := range details() {
				body[k] = v
			}
		}
		respondJSON(w, status, body)
	}
}
