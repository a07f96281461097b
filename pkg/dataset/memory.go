package dataset

import (
	"fmt"
	"path"
	"sort"
	"sync"

	"github.com/agentstation/propscan/pkg/constants"
)

// MemoryGroup is an in-memory Group, used to describe datasets in tests
// and to stand in for files that need no HDF5 library.
type MemoryGroup struct {
	path     string
	children map[string]*MemoryGroup
}

// NewMemoryDataset returns the root of an empty dataset with both the
// phenomena and universes groups present.
func NewMemoryDataset() *MemoryGroup {
	root := newMemoryGroup("/")
	root.ensure([]string{constants.PhenomenaGroup})
	root.ensure([]string{constants.UniversesGroup})
	return root
}

func newMemoryGroup(p string) *MemoryGroup {
	return &MemoryGroup{path: p, children: make(map[string]*MemoryGroup)}
}

// AddProperty adds a property below the top-level phenomena group and
// returns its internal path.
func (g *MemoryGroup) AddProperty(phenomenon, set, property string) string {
	return g.ensure([]string{
		constants.PhenomenaGroup, phenomenon,
		constants.PropertySetsGroup, set,
		constants.PropertiesGroup, property,
	}).path
}

// AddUniverseProperty adds a property below the phenomena of a universe and
// returns its internal path.
func (g *MemoryGroup) AddUniverseProperty(universe, phenomenon, set, property string) string {
	return g.ensure([]string{
		constants.UniversesGroup, universe,
		constants.PhenomenaGroup, phenomenon,
		constants.PropertySetsGroup, set,
		constants.PropertiesGroup, property,
	}).path
}

// Ensure creates the group at the given segments and returns it.
func (g *MemoryGroup) Ensure(segments ...string) *MemoryGroup {
	return g.ensure(segments)
}

// Remove deletes a direct child group.
func (g *MemoryGroup) Remove(name string) {
	delete(g.children, name)
}

func (g *MemoryGroup) ensure(segments []string) *MemoryGroup {
	current := g
	for _, name := range segments {
		next, ok := current.children[name]
		if !ok {
			next = newMemoryGroup(path.Join(current.path, name))
			current.children[name] = next
		}
		current = next
	}
	return current
}

// Path implements Group.
func (g *MemoryGroup) Path() string { return g.path }

// Names implements Group.
func (g *MemoryGroup) Names() ([]string, error) {
	names := make([]string, 0, len(g.children))
	for name := range g.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Group implements Group.
func (g *MemoryGroup) Group(name string) (Group, error) {
	c, ok := g.children[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchGroup, path.Join(g.path, name))
	}
	return c, nil
}

// Close implements Group.
func (g *MemoryGroup) Close() error { return nil }

// MemoryOpener serves registered in-memory datasets by file path. Paths
// that were never registered are reported as not being datasets.
type MemoryOpener struct {
	mu       sync.Mutex
	datasets map[string]*MemoryGroup
	opened   []string
}

// NewMemoryOpener returns an empty MemoryOpener.
func NewMemoryOpener() *MemoryOpener {
	return &MemoryOpener{datasets: make(map[string]*MemoryGroup)}
}

// Register makes root the dataset stored at path.
func (o *MemoryOpener) Register(path string, root *MemoryGroup) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.datasets[path] = root
}

// Open implements Opener.
func (o *MemoryOpener) Open(path string) (Group, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, path)
	root, ok := o.datasets[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDataset, path)
	}
	return root, nil
}

// Opened returns the paths passed to Open, in call order.
func (o *MemoryOpener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}
