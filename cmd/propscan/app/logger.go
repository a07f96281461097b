package app

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/propscan/pkg/logging"
)

// NewLogger creates a configured logger based on the application configuration.
// Log level precedence (highest to lowest):
//  1. --log-level flag (explicit always wins)
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. LOG_LEVEL environment variable
//  5. Default (info)
func NewLogger(config *Config) zerolog.Logger {
	return newLogger(config, os.Stderr)
}

func newLogger(config *Config, warnings io.Writer) zerolog.Logger {
	level := determineLogLevel(config, warnings)

	logConfig := &logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
	}

	return logging.NewLoggerFromConfig(logConfig)
}

// determineLogLevel determines the log level using clear precedence rules.
// Warnings about conflicting or invalid settings go to warnings.
func determineLogLevel(config *Config, warnings io.Writer) string {
	// 1. Explicit --log-level always wins
	if config.LogLevel != "" {
		validated := validateLogLevel(config.LogLevel)
		if validated != config.LogLevel {
			fmt.Fprintf(warnings, "Warning: invalid log level %q, using %q\n", config.LogLevel, validated)
		}
		return validated
	}

	// 2. Conflicting boolean flags: quiet is more restrictive
	if config.Verbose && config.Quiet {
		fmt.Fprintf(warnings, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}

	// 3. Boolean shortcuts
	if config.Verbose {
		return "debug"
	}
	if config.Quiet {
		return "warn"
	}

	// 4. Environment variable
	if config.EnvLogLevel != "" {
		return validateLogLevel(config.EnvLogLevel)
	}

	return "info"
}

// validateLogLevel validates a log level string and returns a valid level.
// If the input is invalid, returns "info" as a safe default.
func validateLogLevel(level string) string {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if validLevels[level] {
		return level
	}

	return "info"
}
