package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/propscan/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	buf := &bytes.Buffer{}
	logging.SetDefault(zerolog.New(buf).Level(zerolog.DebugLevel))

	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")
	logging.Error().Msg("error message")

	output := buf.String()
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "error message")
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithRunID(ctx, "run-1")
	ctx = logging.WithCollection(ctx, "http://svc/properties")
	ctx = logging.WithDataset(ctx, "/data/areas.lue")

	logging.FromContext(ctx).Info().Msg("test message")

	testLogger.AssertContains(t, `"run_id":"run-1"`)
	testLogger.AssertContains(t, "http://svc/properties")
	testLogger.AssertContains(t, "/data/areas.lue")
	testLogger.AssertContains(t, "test message")
	assert.Equal(t, "run-1", logging.RunID(ctx))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is part of the contract
	assert.Same(t, logging.Default(), logging.FromContext(nil))
}

func TestWithFields(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithFields(ctx, map[string]any{
		"created": 3,
		"dry_run": true,
	})

	logging.Ctx(ctx).Info().Msg("done")

	testLogger.AssertContains(t, `"created":3`)
	testLogger.AssertContains(t, `"dry_run":true`)
	assert.Len(t, testLogger.Lines(), 1)
}

func TestConfiguration(t *testing.T) {
	t.Run("file output in json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scan.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "warn",
			Format: "json",
			Output: path,
			Fields: map[string]any{"component": "scanner"},
		})

		logger.Info().Msg("hidden")
		logger.Warn().Msg("visible")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "hidden")
		assert.Contains(t, string(data), "visible")
		assert.Contains(t, string(data), `"component":"scanner"`)
	})

	t.Run("discard output", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "info", Output: "discard"})
		logger.Info().Msg("nothing")
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(nil)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"":        zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for input, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(input), "level %q", input)
	}
}

func TestTestLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	testLogger.Info().Msg("first")
	testLogger.Debug().Msg("second")

	assert.Len(t, testLogger.Lines(), 2)
	assert.True(t, strings.Contains(testLogger.Output(), "second"))
	testLogger.AssertNotContains(t, "third")
}
