// Package scanner discovers dataset properties on the filesystem.
//
// A scan walks a file or directory tree, opens every regular file as a
// dataset and collects one DatasetProperty per property found. Files that
// are not datasets are skipped silently; most files in a tree are not.
package scanner

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/agentstation/propscan/internal/matcher"
	"github.com/agentstation/propscan/pkg/dataset"
	"github.com/agentstation/propscan/pkg/errors"
	"github.com/agentstation/propscan/pkg/logging"
	"github.com/agentstation/propscan/pkg/properties"
)

// Recorder receives scan statistics.
type Recorder interface {
	FileScanned(outcome dataset.Outcome)
	PropertiesDiscovered(n int)
}

type nopRecorder struct{}

func (nopRecorder) FileScanned(dataset.Outcome) {}
func (nopRecorder) PropertiesDiscovered(int)    {}

// Scanner walks filesystem trees looking for dataset properties.
type Scanner struct {
	opener   dataset.Opener
	logger   *zerolog.Logger
	strict   bool
	exclude  *matcher.Set
	recorder Recorder
}

// New creates a Scanner. An Opener is required.
func New(opts ...Option) (*Scanner, error) {
	s := &Scanner{recorder: nopRecorder{}}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.opener == nil {
		return nil, &errors.ValidationError{
			Field:   "opener",
			Message: "a dataset opener is required",
		}
	}
	return s, nil
}

// ScanAll scans every root in order and concatenates the results. The same
// property reached through two roots is reported twice.
func (s *Scanner) ScanAll(ctx context.Context, roots ...string) ([]properties.DatasetProperty, error) {
	var found []properties.DatasetProperty
	for _, root := range roots {
		props, err := s.Scan(ctx, root)
		if err != nil {
			return nil, err
		}
		found = append(found, props...)
	}
	return found, nil
}

// Scan returns the properties of the dataset at path, or of every dataset
// below path when it is a directory. Traversal order follows directory
// enumeration and must not be relied upon.
func (s *Scanner) Scan(ctx context.Context, path string) ([]properties.DatasetProperty, error) {
	w := &walker{Scanner: s, visited: make(map[string]bool)}
	return w.scan(ctx, path)
}

// walker holds the state of one Scan call.
type walker struct {
	*Scanner
	visited map[string]bool
}

func (w *walker) scan(ctx context.Context, path string) ([]properties.DatasetProperty, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, w.ioFailure(ctx, "stat", path, err)
	}

	switch {
	case info.IsDir():
		return w.scanDir(ctx, path)
	case info.Mode().IsRegular():
		return w.scanFile(ctx, path)
	default:
		w.log(ctx).Debug().Str("path", path).Msg("Skipping non-regular file")
		return nil, nil
	}
}

func (w *walker) scanDir(ctx context.Context, dir string) ([]properties.DatasetProperty, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, w.ioFailure(ctx, "resolve", dir, err)
	}
	if w.visited[resolved] {
		w.log(ctx).Debug().Str("path", dir).Msg("Skipping directory already visited")
		return nil, nil
	}
	w.visited[resolved] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, w.ioFailure(ctx, "read", dir, err)
	}

	var found []properties.DatasetProperty
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if m, ok := w.exclude.Match(path); ok {
			w.log(ctx).Debug().Str("path", path).Str("pattern", m.Pattern()).Msg("Skipping excluded path")
			continue
		}
		props, err := w.scan(ctx, path)
		if err != nil {
			return nil, err
		}
		found = append(found, props...)
	}
	return found, nil
}

func (w *walker) scanFile(ctx context.Context, path string) ([]properties.DatasetProperty, error) {
	paths, err := w.introspect(path)
	outcome := dataset.Classify(err)
	w.recorder.FileScanned(outcome)

	switch outcome {
	case dataset.OutcomeNotDataset:
		w.log(ctx).Trace().Str("path", path).Err(err).Msg("Skipping non-dataset file")
		return nil, nil
	case dataset.OutcomeIOError:
		return nil, w.ioFailure(ctx, "open", path, err)
	}

	found := make([]properties.DatasetProperty, 0, len(paths))
	for _, p := range paths {
		found = append(found, properties.New(path, p))
	}
	w.recorder.PropertiesDiscovered(len(found))
	w.log(ctx).Debug().
		Str("dataset", path).
		Int("properties", len(found)).
		Msg("Found dataset")
	return found, nil
}

// introspect opens path and lists its property paths. A file yields either
// all of its properties or none.
func (w *walker) introspect(path string) ([]string, error) {
	root, err := w.opener.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = root.Close() }()
	return dataset.Properties(root)
}

// ioFailure applies the I/O error policy: strict scans fail, others log
// and carry on as if the path held no datasets.
func (w *walker) ioFailure(ctx context.Context, op, path string, err error) error {
	if w.strict {
		return errors.WrapIO(op, path, err)
	}
	w.log(ctx).Warn().Err(err).Str("path", path).Str("op", op).Msg("Skipping unreadable path")
	return nil
}

func (w *walker) log(ctx context.Context) *zerolog.Logger {
	if w.logger != nil {
		return w.logger
	}
	return logging.FromContext(ctx)
}
