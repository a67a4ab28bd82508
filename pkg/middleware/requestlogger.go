package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Sagar-1103/taskify/pkg/logger"
)

// RequestLogger stores a logger enriched with the correlation id and trace
// context in the request context. Mount it after RequestLogging and Tracing.
// The auth gate adds user_id on protected routes.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
