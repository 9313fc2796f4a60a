package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/streamtv/backend/internal/access"
	"github.com/streamtv/backend/internal/logging"
)

// MaintenanceGate blocks API traffic with 503 while the remote access flag
// reports the application as disabled. Health probes stay reachable.
func MaintenanceGate(checker access.Checker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}

			status := checker.Check(r.Context())
			if !status.Active {
				logging.FromContext(r.Context()).Warn("request blocked by access flag", "message", status.Message)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "service under maintenance",
					"message": status.Message,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
