package context

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/propscan/pkg/reconciler"
	"github.com/agentstation/propscan/pkg/remote"
)

// MockContext provides a mock implementation of Context for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &context.MockContext{
//	    RemoteFunc: func(uri string) (remote.Client, error) {
//	        return remote.New(uri, remote.WithHTTPClient(srv.Client()))
//	    },
//	}
//	cmd := list.NewCommand(mock)
type MockContext struct {
	RemoteFunc       func(collectionURI string) (remote.Client, error)
	ScannerFunc      func(strict bool, exclude ...string) (reconciler.Scanner, error)
	RecorderFunc     func() reconciler.Recorder
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	QuietFunc        func() bool
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Remote returns a client using the mock function or a client for
// collectionURI with default settings.
func (m *MockContext) Remote(collectionURI string) (remote.Client, error) {
	if m.RemoteFunc != nil {
		return m.RemoteFunc(collectionURI)
	}
	client, err := remote.New(collectionURI)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Scanner returns a scanner using the mock function or nil.
func (m *MockContext) Scanner(strict bool, exclude ...string) (reconciler.Scanner, error) {
	if m.ScannerFunc != nil {
		return m.ScannerFunc(strict, exclude...)
	}
	return nil, nil
}

// Recorder returns a recorder using the mock function or nil.
func (m *MockContext) Recorder() reconciler.Recorder {
	if m.RecorderFunc != nil {
		return m.RecorderFunc()
	}
	return nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *MockContext) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *MockContext) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Quiet returns quiet using the mock function or false.
func (m *MockContext) Quiet() bool {
	if m.QuietFunc != nil {
		return m.QuietFunc()
	}
	return false
}

// Version returns version using the mock function or "dev".
func (m *MockContext) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *MockContext) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *MockContext) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "unknown".
func (m *MockContext) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}

// Ensure MockContext implements Context at compile time.
var _ Context = (*MockContext)(nil)
