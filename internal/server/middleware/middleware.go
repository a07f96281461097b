// Package middleware provides HTTP middleware for the property service:
// request logging, panic recovery and token authentication.
package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/propscan/internal/server/response"
)

// Chain combines multiple middleware functions into a single middleware.
func Chain(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// Logger logs HTTP requests with structured logging.
func Logger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			ctx := logger.With().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger().
				WithContext(r.Context())

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.statusCode).
				Dur("duration_ms", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}

// Recovery recovers from panics and returns 500 error.
func Recovery(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("Panic recovered")

					response.InternalError(w, nil)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
