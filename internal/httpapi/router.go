// Package httpapi serves stored analyses over a read-only JSON API.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/huangsam/cleanscore/internal/contract"
)

// requestTimeout bounds every request, including slow store queries.
const requestTimeout = 10 * time.Second

// NewRouter sets up the routes and middleware of the API.
func NewRouter(finder AnalysisFinder, store contract.AnalysisStore, defaultLimit int, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	h := NewHandlers(finder, store, defaultLimit)

	r := chi.NewRouter()
	r.Use(LoggingMiddleware(logger))
	r.Use(RecoveryMiddleware(logger))

	r.Get("/health", HealthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/analysis", h.ListAnalyses)
		r.Get("/analysis/{commitID}", h.GetAnalysis)
		r.Get("/statistics", h.GetStatistics)
	})

	return http.TimeoutHandler(r, requestTimeout, `{"success":false,"error":"request timeout"}`)
}
