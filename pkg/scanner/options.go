package scanner

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/propscan/internal/matcher"
	"github.com/agentstation/propscan/pkg/dataset"
	"github.com/agentstation/propscan/pkg/errors"
)

// Option configures a Scanner.
type Option func(*Scanner) error

// WithOpener sets the dataset opener.
func WithOpener(opener dataset.Opener) Option {
	return func(s *Scanner) error {
		if opener == nil {
			return &errors.ValidationError{
				Field:   "opener",
				Message: "cannot be nil",
			}
		}
		s.opener = opener
		return nil
	}
}

// WithLogger sets the logger. Without it the logger is taken from the context.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Scanner) error {
		s.logger = logger
		return nil
	}
}

// WithStrict makes unreadable paths fail the scan instead of being skipped.
func WithStrict(strict bool) Option {
	return func(s *Scanner) error {
		s.strict = strict
		return nil
	}
}

// WithRecorder sets the statistics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(s *Scanner) error {
		if recorder == nil {
			recorder = nopRecorder{}
		}
		s.recorder = recorder
		return nil
	}
}

// WithExclude skips entries below a scanned directory that match any of
// patterns. Globs match the entry name; "re:" patterns or patterns with
// regex syntax match the whole path. Roots passed to Scan are never
// excluded.
func WithExclude(patterns ...string) Option {
	return func(s *Scanner) error {
		set, err := matcher.NewSet(patterns...)
		if err != nil {
			return err
		}
		s.exclude = set
		return nil
	}
}
