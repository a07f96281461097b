package server

import "github.com/agentstation/propscan/internal/server/middleware"

// Config holds server configuration.
type Config struct {
	// PathPrefix is prepended to every route, e.g. "/api".
	PathPrefix string

	// Auth guards every route when enabled.
	Auth middleware.AuthConfig
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PathPrefix: "/api",
		Auth:       middleware.DefaultAuthConfig(),
	}
}

// CollectionPath returns the path of the property collection.
func (c Config) CollectionPath() string {
	return c.PathPrefix + "/properties"
}
