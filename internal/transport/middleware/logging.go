package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
)

// sensitiveHeaders are header names that should be filtered from logs
var sensitiveHeaders = []string{
	"authorization",
	"token",
	"api_key",
	"cookie",
	"secret",
}

func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := middleware.GetReqID(r.Context())

			logger.Info("incoming request",
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", filterSensitiveHeaders(r.Header),
			)

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				"request_id", reqID,
				"status", ww.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func filterSensitiveHeaders(h http.Header) map[string]string {
	filtered := make(map[string]string, len(h))
	for name, values := range h {
		lower := strings.ToLower(name)
		redacted := false
		for _, s := range sensitiveHeaders {
			if strings.Contains(lower, s) {
				redacted = true
				break
			}
		}
		if redacted {
			filtered[name] = "[REDACTED]"
			continue
		}
		filtered[name] = strings.Join(values, ", ")
	}
	return filtered
}
