package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/propscan/pkg/constants"
)

// Config holds logger configuration options
type Config struct {
	// Level is the minimum log level to output
	Level string

	// Format is the output format (json, console, auto)
	Format string

	// Output is where to write logs (stderr, stdout, discard, or file path)
	Output string

	// TimeFormat for console timestamps (kitchen, rfc3339, or a Go layout)
	TimeFormat string

	// NoColor disables color output in console mode
	NoColor bool

	// AddCaller includes file:line in log output
	AddCaller bool

	// Fields are default fields to include in all logs
	Fields map[string]any
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
		Fields:     make(map[string]any),
	}
}

// NewLoggerFromConfig creates a new logger from configuration
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(getWriter(cfg)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}

	if len(cfg.Fields) > 0 {
		ctx := logger.With()
		for k, v := range cfg.Fields {
			ctx = addFieldToContext(ctx, k, v)
		}
		logger = ctx.Logger()
	}

	return logger
}

// Configure updates the default logger with the given configuration
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// ConfigureFromEnv configures the logger from environment variables
func ConfigureFromEnv() {
	Configure(&Config{
		Level:      getEnvOrDefault("LOG_LEVEL", "info"),
		Format:     getEnvOrDefault("LOG_FORMAT", "auto"),
		Output:     getEnvOrDefault("LOG_OUTPUT", "stderr"),
		TimeFormat: getEnvOrDefault("LOG_TIME_FORMAT", "kitchen"),
		NoColor:    os.Getenv("NO_COLOR") != "",
		AddCaller:  os.Getenv("LOG_CALLER") == "true",
		Fields:     parseFields(os.Getenv("LOG_FIELDS")),
	})
}

// getWriter creates the appropriate writer based on configuration
func getWriter(cfg *Config) io.Writer {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	case "discard", "none":
		return io.Discard
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
		if err != nil {
			// Fall back to stderr
			output = os.Stderr
		} else {
			output = file
		}
	}

	format := strings.ToLower(cfg.Format)
	if format == "auto" || format == "" {
		if isTerminal(output) {
			format = "console"
		} else {
			format = "json"
		}
	}

	switch format {
	case "console", "pretty":
		return zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: parseTimeFormat(cfg.TimeFormat),
			NoColor:    cfg.NoColor,
		}
	default:
		return output
	}
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// ParseLevel parses a log level string, falling back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "none", "off":
		return zerolog.Disabled
	default:
		if l, err := zerolog.ParseLevel(level); err == nil {
			return l
		}
		return zerolog.InfoLevel
	}
}

// parseTimeFormat parses time format configuration
func parseTimeFormat(format string) string {
	switch strings.ToLower(format) {
	case "kitchen", "":
		return time.Kitchen
	case "rfc3339":
		return time.RFC3339
	case "rfc3339nano":
		return time.RFC3339Nano
	case "stamp":
		return time.Stamp
	default:
		if strings.Contains(format, "2006") || strings.Contains(format, "15:04") {
			return format
		}
		return time.Kitchen
	}
}

// parseFields parses comma-separated key=value pairs
func parseFields(fields string) map[string]any {
	result := make(map[string]any)
	if fields == "" {
		return result
	}

	for _, field := range strings.Split(fields, ",") {
		parts := strings.SplitN(field, "=", 2)
		if len(parts) == 2 {
			result[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return result
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
