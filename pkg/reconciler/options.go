package reconciler

import (
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/agentstation/propscan/pkg/errors"
)

// Options configures a reconciler.
type options struct {
	scanner  Scanner
	dryRun   bool
	clock    clockwork.Clock
	logger   *zerolog.Logger
	recorder Recorder
}

func defaultOptions() *options {
	return &options{
		clock:    clockwork.NewRealClock(),
		recorder: nopRecorder{},
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithScanner sets the scanner used by ScanAndAdd.
func WithScanner(scanner Scanner) Option {
	return func(o *options) error {
		if scanner == nil {
			return &errors.ValidationError{
				Field:   "scanner",
				Message: "cannot be nil",
			}
		}
		o.scanner = scanner
		return nil
	}
}

// WithDryRun computes plans without creating or deleting anything.
func WithDryRun(dryRun bool) Option {
	return func(o *options) error {
		o.dryRun = dryRun
		return nil
	}
}

// WithClock sets the clock used to time runs.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{
				Field:   "clock",
				Message: "cannot be nil",
			}
		}
		o.clock = clock
		return nil
	}
}

// WithLogger sets the logger. It is also handed to the scanner and client
// through the run context.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithRecorder sets where run statistics are recorded.
func WithRecorder(recorder Recorder) Option {
	return func(o *options) error {
		if recorder == nil {
			recorder = nopRecorder{}
		}
		o.recorder = recorder
		return nil
	}
}
