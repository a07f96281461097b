// Package app provides the application context and dependency management
// for the propscan CLI. It centralizes configuration, logging and the
// construction of the scanner, remote client and metrics used by commands.
package app

import (
	stdctx "context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/propscan/cmd/propscan/context"
	"github.com/agentstation/propscan/internal/lue"
	"github.com/agentstation/propscan/internal/metrics"
	"github.com/agentstation/propscan/pkg/dataset"
	"github.com/agentstation/propscan/pkg/errors"
	"github.com/agentstation/propscan/pkg/reconciler"
	"github.com/agentstation/propscan/pkg/remote"
	"github.com/agentstation/propscan/pkg/scanner"
)

// App represents the propscan application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Opener reads datasets; HDF5 unless replaced for tests.
	opener dataset.Opener

	// Extra remote client options, appended after the configured ones.
	remoteOpts []remote.Option

	// Command output; stdout when nil.
	out io.Writer

	// Metrics (lazy-initialized when a metrics file is configured)
	mu      sync.Mutex
	metrics *metrics.Metrics
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		opener:  lue.NewOpener(),
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Quiet reports whether --quiet was given.
func (a *App) Quiet() bool {
	return a.config.Quiet
}

// Remote returns a client for the collection at collectionURI.
func (a *App) Remote(collectionURI string) (remote.Client, error) {
	opts := []remote.Option{
		remote.WithTimeout(a.config.Timeout),
		remote.WithRateLimit(a.config.RateLimit),
		remote.WithLogger(a.logger),
	}
	if m := a.Metrics(); m != nil {
		opts = append(opts, remote.WithObserver(m.ObserveRequest))
	}
	if a.config.Token != "" {
		if a.config.AuthHeader != "" {
			opts = append(opts, remote.WithAuthHeader(a.config.AuthHeader, a.config.Token))
		} else {
			opts = append(opts, remote.WithToken(a.config.Token))
		}
	}
	opts = append(opts, a.remoteOpts...)

	client, err := remote.New(collectionURI, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Scanner returns a dataset scanner reading through the app's opener.
func (a *App) Scanner(strict bool, exclude ...string) (reconciler.Scanner, error) {
	opts := []scanner.Option{
		scanner.WithOpener(a.opener),
		scanner.WithLogger(a.logger),
		scanner.WithStrict(strict),
		scanner.WithExclude(exclude...),
	}
	if m := a.Metrics(); m != nil {
		opts = append(opts, scanner.WithRecorder(m))
	}

	s, err := scanner.New(opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Recorder returns the metrics recorder, or nil when no metrics file is
// configured.
func (a *App) Recorder() reconciler.Recorder {
	if m := a.Metrics(); m != nil {
		return m
	}
	return nil
}

// Metrics returns the run metrics, creating them on first use. It is nil
// unless a metrics file is configured.
func (a *App) Metrics() *metrics.Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.config.MetricsFile == "" {
		return nil
	}
	if a.metrics == nil {
		a.metrics = metrics.New()
	}
	return a.metrics
}

// Shutdown flushes the metrics file, if one is configured.
func (a *App) Shutdown(_ stdctx.Context) error {
	a.mu.Lock()
	m := a.metrics
	a.mu.Unlock()

	if m == nil {
		return nil
	}
	if err := m.WriteTextfile(a.config.MetricsFile); err != nil {
		return err
	}
	a.logger.Debug().Str("path", a.config.MetricsFile).Msg("Wrote metrics")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOpener replaces the HDF5 dataset opener (useful for testing).
func WithOpener(opener dataset.Opener) Option {
	return func(a *App) error {
		if opener == nil {
			return &errors.ValidationError{Field: "opener", Message: "cannot be nil"}
		}
		a.opener = opener
		return nil
	}
}

// WithRemoteOptions appends options to every remote client the app creates.
func WithRemoteOptions(opts ...remote.Option) Option {
	return func(a *App) error {
		a.remoteOpts = append(a.remoteOpts, opts...)
		return nil
	}
}

// WithOutput sets where commands write their results.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}

// Ensure App implements context.Context at compile time.
var _ context.Context = (*App)(nil)
