package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger captures log output for assertions in tests.
type TestLogger struct {
	*zerolog.Logger
	Buffer *bytes.Buffer
}

// NewTestLogger creates a trace-level logger writing JSON lines into a buffer.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	buf := &bytes.Buffer{}
	oldLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logger := zerolog.New(buf).
		Level(zerolog.TraceLevel).
		With().
		Timestamp().
		Logger()

	t.Cleanup(func() {
		zerolog.SetGlobalLevel(oldLevel)
	})

	return &TestLogger{
		Logger: &logger,
		Buffer: buf,
	}
}

// Output returns the captured log output as a string
func (tl *TestLogger) Output() string {
	return tl.Buffer.String()
}

// Lines returns the captured log output as individual lines
func (tl *TestLogger) Lines() []string {
	output := strings.TrimSpace(tl.Output())
	if output == "" {
		return []string{}
	}
	return strings.Split(output, "\n")
}

// Contains checks if the log output contains the given string
func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Output(), substr)
}

// AssertContains asserts that the log contains the given string
func (tl *TestLogger) AssertContains(t testing.TB, substr string) {
	t.Helper()
	if !tl.Contains(substr) {
		t.Errorf("Log output does not contain %q\nOutput:\n%s", substr, tl.Output())
	}
}

// AssertNotContains asserts that the log does not contain the given string
func (tl *TestLogger) AssertNotContains(t testing.TB, substr string) {
	t.Helper()
	if tl.Contains(substr) {
		t.Errorf("Log output should not contain %q\nOutput:\n%s", substr, tl.Output())
	}
}

// NewNopLogger creates a logger that discards all output
func NewNopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
