// Package logging provides structured logging for propscan using zerolog.
// Console output is used when writing to a terminal and JSON otherwise,
// so scans piped into log collectors stay machine readable.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("dataset", "/data/areas.lue").Msg("Found dataset")
//
//	ctx := logging.WithLogger(context.Background(), log)
//	ctx = logging.WithRunID(ctx, runID)
//	logging.FromContext(ctx).Debug().Msg("Fetching collection")
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger zerolog.Logger

	// Nop logger for discarding output.
	Nop = zerolog.Nop()
)

func init() {
	defaultLogger = createDefaultLogger()
}

// createDefaultLogger creates a logger with default settings.
func createDefaultLogger() zerolog.Logger {
	var writer io.Writer = os.Stderr

	if isTerminal(os.Stderr) && os.Getenv("LOG_FORMAT") != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	level := ParseLevel(os.Getenv("LOG_LEVEL"))
	if os.Getenv("LOG_LEVEL") == "" && os.Getenv("DEBUG") != "" {
		level = zerolog.DebugLevel
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// New creates a new logger with the given writer.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()
}

// Debug starts a new debug level log event.
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Info starts a new info level log event.
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

// Warn starts a new warning level log event.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// Error starts a new error level log event.
func Error() *zerolog.Event {
	return defaultLogger.Error()
}
