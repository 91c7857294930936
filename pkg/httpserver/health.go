package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/pgsession/pkg/logger"
)

// Check probes one dependency, typically the database.
type Check func(context.Context) error

// HealthHandler answers liveness and readiness probes. Without checks it
// always answers 200 "ALIVE". With checks it answers 200 "READY" when all
// pass and 503 "NOT_READY" as soon as one fails.
func HealthHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")

		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
