package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/propscan/internal/server/response"
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Enabled    bool
	Token      string
	HeaderName string
}

// DefaultAuthConfig returns default authentication configuration.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Enabled:    false,
		HeaderName: "X-API-Key",
	}
}

// Auth middleware rejects requests that do not carry the configured token,
// either in the custom header or as a bearer token.
func Auth(config AuthConfig, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r, config)
			if token == "" || token != config.Token {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Bool("token_provided", token != "").
					Msg("Authentication failed")

				response.Unauthorized(w, "Invalid or missing token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the token from the request.
func extractToken(r *http.Request, config AuthConfig) string {
	if config.HeaderName != "" {
		if token := r.Header.Get(config.HeaderName); token != "" {
			return token
		}
	}

	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return auth
}
