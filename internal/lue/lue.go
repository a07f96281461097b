// Package lue opens LUE datasets, which are HDF5 files carrying a
// phenomena and a universes group at their root.
package lue

import (
	"fmt"
	"path"

	"gonum.org/v1/hdf5"

	"github.com/agentstation/propscan/pkg/constants"
	"github.com/agentstation/propscan/pkg/dataset"
	"github.com/agentstation/propscan/pkg/errors"
)

// Opener opens LUE datasets through the HDF5 library.
type Opener struct{}

var _ dataset.Opener = Opener{}

// NewOpener returns an Opener.
func NewOpener() Opener {
	return Opener{}
}

// Open implements dataset.Opener. Files that are not HDF5, or HDF5 files
// without the LUE root groups, are reported as dataset.ErrNotDataset.
func (Opener) Open(name string) (dataset.Group, error) {
	if !hdf5.IsHDF5(name) {
		return nil, fmt.Errorf("%w: %s is not an HDF5 file", dataset.ErrNotDataset, name)
	}

	f, err := hdf5.OpenFile(name, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, errors.WrapIO("open", name, err)
	}

	root := &group{path: "/", fg: f.CommonFG, closer: f.Close}
	for _, required := range []string{constants.PhenomenaGroup, constants.UniversesGroup} {
		if !root.has(required) {
			_ = f.Close()
			return nil, fmt.Errorf("%w: %s has no %q group", dataset.ErrNotDataset, name, required)
		}
	}
	return root, nil
}

// group adapts an HDF5 file or group to dataset.Group.
type group struct {
	path   string
	fg     hdf5.CommonFG
	closer func() error
}

// Path implements dataset.Group.
func (g *group) Path() string {
	return g.path
}

// Names implements dataset.Group. Only child groups are listed; datasets
// holding property values are leaves of no interest here.
func (g *group) Names() ([]string, error) {
	n, err := g.fg.NumObjects()
	if err != nil {
		return nil, errors.WrapIO("read", g.path, err)
	}

	names := make([]string, 0, n)
	for i := uint(0); i < n; i++ {
		kind, err := g.fg.ObjectTypeByIndex(i)
		if err != nil {
			return nil, errors.WrapIO("read", g.path, err)
		}
		if kind != hdf5.H5G_GROUP {
			continue
		}
		name, err := g.fg.ObjectNameByIndex(i)
		if err != nil {
			return nil, errors.WrapIO("read", g.path, err)
		}
		names = append(names, name)
	}
	return names, nil
}

// Group implements dataset.Group.
func (g *group) Group(name string) (dataset.Group, error) {
	if !g.has(name) {
		return nil, fmt.Errorf("%w: %s", dataset.ErrNoSuchGroup, path.Join(g.path, name))
	}
	c, err := g.fg.OpenGroup(name)
	if err != nil {
		return nil, errors.WrapIO("open", path.Join(g.path, name), err)
	}
	return &group{path: path.Join(g.path, name), fg: c.CommonFG, closer: c.Close}, nil
}

// Close implements dataset.Group.
func (g *group) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer()
}

// has reports whether g has a child group called name.
func (g *group) has(name string) bool {
	names, err := g.Names()
	if err != nil {
		return false
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
