package scanner_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/propscan/pkg/dataset"
	"github.com/agentstation/propscan/pkg/errors"
	"github.com/agentstation/propscan/pkg/logging"
	"github.com/agentstation/propscan/pkg/properties"
	"github.com/agentstation/propscan/pkg/scanner"
)

// writeFile creates a file with some content below dir.
func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(name), 0o644))
	return p
}

// dataset registers a dataset with n properties at path.
func registerDataset(opener *dataset.MemoryOpener, path string, n int) {
	root := dataset.NewMemoryDataset()
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			root.AddProperty("areas", "constant", fmt.Sprintf("p%d", i))
		} else {
			root.AddUniverseProperty("u", "areas", "variable", fmt.Sprintf("p%d", i))
		}
	}
	opener.Register(path, root)
}

func newScanner(t *testing.T, opener dataset.Opener, opts ...scanner.Option) *scanner.Scanner {
	t.Helper()
	s, err := scanner.New(append([]scanner.Option{
		scanner.WithOpener(opener),
		scanner.WithLogger(logging.NewNopLogger()),
	}, opts...)...)
	require.NoError(t, err)
	return s
}

func TestScanTreeFindsEveryDatasetProperty(t *testing.T) {
	const datasets, perDataset, others = 4, 3, 5

	dir := t.TempDir()
	opener := dataset.NewMemoryOpener()
	for i := 0; i < datasets; i++ {
		p := writeFile(t, dir, filepath.Join(fmt.Sprintf("level%d", i%2), fmt.Sprintf("set%d.lue", i)))
		registerDataset(opener, p, perDataset)
	}
	for i := 0; i < others; i++ {
		writeFile(t, dir, filepath.Join("docs", fmt.Sprintf("note%d.txt", i)))
	}

	found, err := newScanner(t, opener).Scan(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, found, datasets*perDataset)
	assert.Len(t, opener.Opened(), datasets+others)

	perFile := map[string]int{}
	for _, p := range found {
		perFile[p.DatasetPath]++
	}
	assert.Len(t, perFile, datasets)
	for path, n := range perFile {
		assert.Equal(t, perDataset, n, path)
	}
}

func TestScanSingleFile(t *testing.T) {
	dir := t.TempDir()
	opener := dataset.NewMemoryOpener()
	p := writeFile(t, dir, "a.lue")
	root := dataset.NewMemoryDataset()
	elevation := root.AddProperty("areas", "constant", "elevation")
	opener.Register(p, root)

	found, err := newScanner(t, opener).Scan(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []properties.DatasetProperty{properties.New(p, elevation)}, found)
}

func TestScanSkipsNonDatasets(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "notes.txt")

	found, err := newScanner(t, dataset.NewMemoryOpener(), scanner.WithStrict(true)).Scan(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestScanAllKeepsDuplicatesAcrossRoots(t *testing.T) {
	dir := t.TempDir()
	opener := dataset.NewMemoryOpener()
	p := writeFile(t, dir, "a.lue")
	registerDataset(opener, p, 2)

	found, err := newScanner(t, opener).ScanAll(context.Background(), dir, p)
	require.NoError(t, err)
	assert.Len(t, found, 4)
}

func TestScanMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	t.Run("lenient", func(t *testing.T) {
		testLogger := logging.NewTestLogger(t)
		s, err := scanner.New(
			scanner.WithOpener(dataset.NewMemoryOpener()),
			scanner.WithLogger(testLogger.Logger),
		)
		require.NoError(t, err)

		found, err := s.Scan(context.Background(), missing)
		require.NoError(t, err)
		assert.Empty(t, found)
		testLogger.AssertContains(t, "Skipping unreadable path")
	})

	t.Run("strict", func(t *testing.T) {
		_, err := newScanner(t, dataset.NewMemoryOpener(), scanner.WithStrict(true)).Scan(context.Background(), missing)
		require.Error(t, err)

		var ioErr *errors.IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, missing, ioErr.Path)
	})
}

func TestScanTreatsOpenFailuresAsIOErrors(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "locked.lue")
	opener := dataset.OpenerFunc(func(string) (dataset.Group, error) {
		return nil, os.ErrPermission
	})

	found, err := newScanner(t, opener).Scan(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = newScanner(t, opener, scanner.WithStrict(true)).Scan(context.Background(), p)
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestScanFollowsSymlinkedDirectoriesOnce(t *testing.T) {
	dir := t.TempDir()
	opener := dataset.NewMemoryOpener()
	p := writeFile(t, dir, filepath.Join("data", "a.lue"))
	registerDataset(opener, p, 1)

	// data/loop -> data
	if err := os.Symlink(filepath.Join(dir, "data"), filepath.Join(dir, "data", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	found, err := newScanner(t, opener).Scan(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestScanStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newScanner(t, dataset.NewMemoryOpener()).Scan(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

type countingRecorder struct {
	outcomes   map[dataset.Outcome]int
	discovered int
}

func (r *countingRecorder) FileScanned(o dataset.Outcome) { r.outcomes[o]++ }
func (r *countingRecorder) PropertiesDiscovered(n int)    { r.discovered += n }

func TestScanRecordsStatistics(t *testing.T) {
	dir := t.TempDir()
	opener := dataset.NewMemoryOpener()
	registerDataset(opener, writeFile(t, dir, "a.lue"), 3)
	writeFile(t, dir, "b.txt")

	recorder := &countingRecorder{outcomes: map[dataset.Outcome]int{}}
	_, err := newScanner(t, opener, scanner.WithRecorder(recorder)).Scan(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, recorder.outcomes[dataset.OutcomeDataset])
	assert.Equal(t, 1, recorder.outcomes[dataset.OutcomeNotDataset])
	assert.Equal(t, 3, recorder.discovered)
}

func TestNewRequiresOpener(t *testing.T) {
	_, err := scanner.New()
	assert.True(t, errors.IsValidationError(err))

	_, err = scanner.New(scanner.WithOpener(nil))
	assert.True(t, errors.IsValidationError(err))
}

func TestScanSkipsExcludedEntries(t *testing.T) {
	dir := t.TempDir()
	opener := dataset.NewMemoryOpener()
	keep := writeFile(t, dir, "keep/a.lue")
	registerDataset(opener, keep, 2)
	registerDataset(opener, writeFile(t, dir, "keep/a.lue.bak"), 2)
	registerDataset(opener, writeFile(t, dir, "scratch/b.lue"), 2)

	s := newScanner(t, opener, scanner.WithExclude("*.bak", "re:/scratch$"))
	found, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, found, 2)
	for _, p := range found {
		assert.Equal(t, keep, p.DatasetPath)
	}
	assert.Equal(t, []string{keep}, opener.Opened())
}

func TestScanNeverExcludesRoots(t *testing.T) {
	dir := t.TempDir()
	opener := dataset.NewMemoryOpener()
	p := writeFile(t, dir, "a.bak")
	registerDataset(opener, p, 1)

	found, err := newScanner(t, opener, scanner.WithExclude("*.bak")).Scan(context.Background(), p)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestWithExcludeRejectsBadPattern(t *testing.T) {
	_, err := scanner.New(scanner.WithOpener(dataset.NewMemoryOpener()), scanner.WithExclude("re:("))
	assert.True(t, errors.IsValidationError(err))
}
