package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/cors"
)

// CORS returns middleware that answers preflight requests and sets
// cross-origin headers for the given origins. "*" allows any origin.
func CORS(origins []string, logger *slog.Logger) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodHead},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		opts.Debug = true
		opts.Logger = slog.NewLogLogger(logger.With("component", "cors").Handler(), slog.LevelDebug)
	}
	return cors.New(opts).Handler
}
