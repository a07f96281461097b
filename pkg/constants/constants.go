// Package constants provides shared constants used throughout the propscan codebase.
// This includes timeouts, file permissions, and other configuration values
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for one request to the property service
	DefaultHTTPTimeout = 30 * time.Second

	// ShutdownTimeout bounds cleanup after a failed command
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Remote service constants
const (
	// UserAgent is sent with every request to the property service
	UserAgent = "propscan"

	// CollectionKey is the envelope key of a property collection
	CollectionKey = "properties"

	// ItemKey is the envelope key of a single property
	ItemKey = "property"
)

// Rate limiting constants
const (
	// DefaultRateLimit is the default number of requests per second; zero disables pacing
	DefaultRateLimit = 0

	// BurstSize is the token bucket burst size for paced requests
	BurstSize = 1
)

// Dataset layout constants name the groups of a LUE dataset
const (
	PhenomenaGroup    = "phenomena"
	UniversesGroup    = "universes"
	PropertySetsGroup = "property_sets"
	PropertiesGroup   = "properties"
)
