// Package dataset describes the read-only introspection capability propscan
// needs from a scientific dataset: open a path, walk named groups, and
// report whether the file is a dataset of the expected kind at all.
//
// A LUE dataset is laid out as
//
//	/phenomena/<phenomenon>/property_sets/<set>/properties/<property>
//	/universes/<universe>/phenomena/<phenomenon>/property_sets/<set>/properties/<property>
//
// and the internal path of a property is the path of its group.
package dataset

import (
	"errors"
	"fmt"

	"github.com/agentstation/propscan/pkg/constants"
)

var (
	// ErrNotDataset is returned when a file is not a dataset of the expected kind.
	ErrNotDataset = errors.New("not a dataset")

	// ErrNoSuchGroup is returned by Group.Group for a missing child.
	ErrNoSuchGroup = errors.New("no such group")
)

// Group is a read-only handle on a node with named children.
type Group interface {
	// Path returns the internal path of the node.
	Path() string

	// Names returns the names of the child groups.
	Names() ([]string, error)

	// Group opens the named child group.
	Group(name string) (Group, error)

	// Close releases the handle.
	Close() error
}

// Opener opens dataset files.
type Opener interface {
	// Open opens the file at path as a dataset and returns its root group.
	// It returns an error wrapping ErrNotDataset when the file is readable
	// but is not a dataset of the expected kind.
	Open(path string) (Group, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Group, error)

// Open implements Opener.
func (f OpenerFunc) Open(path string) (Group, error) {
	return f(path)
}

// Outcome classifies the result of introspecting one file.
type Outcome int

const (
	// OutcomeDataset means the file was a dataset and was read.
	OutcomeDataset Outcome = iota
	// OutcomeNotDataset means the file is not a dataset; this is expected.
	OutcomeNotDataset
	// OutcomeIOError means the file could not be read.
	OutcomeIOError
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeDataset:
		return "dataset"
	case OutcomeNotDataset:
		return "not-dataset"
	default:
		return "io-error"
	}
}

// Classify maps an introspection error onto an Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeDataset
	case errors.Is(err, ErrNotDataset):
		return OutcomeNotDataset
	default:
		return OutcomeIOError
	}
}

// Properties returns the internal paths of all properties below root: first
// the phenomena hierarchy, then the phenomena of every universe. The two
// namespaces are concatenated as they are.
func Properties(root Group) ([]string, error) {
	var paths []string

	err := child(root, constants.PhenomenaGroup, func(phenomena Group) error {
		found, err := phenomenaProperties(phenomena)
		paths = append(paths, found...)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = child(root, constants.UniversesGroup, func(universes Group) error {
		return children(universes, func(universe Group) error {
			return child(universe, constants.PhenomenaGroup, func(phenomena Group) error {
				found, err := phenomenaProperties(phenomena)
				paths = append(paths, found...)
				return err
			})
		})
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

// phenomenaProperties walks phenomenon → property set → property.
func phenomenaProperties(phenomena Group) ([]string, error) {
	var paths []string
	err := children(phenomena, func(phenomenon Group) error {
		return child(phenomenon, constants.PropertySetsGroup, func(sets Group) error {
			return children(sets, func(set Group) error {
				return child(set, constants.PropertiesGroup, func(props Group) error {
					return children(props, func(property Group) error {
						paths = append(paths, property.Path())
						return nil
					})
				})
			})
		})
	})
	return paths, err
}

// child opens the named child of g, calls fn with it and closes it.
// A missing child means the tree does not have the dataset layout.
func child(g Group, name string, fn func(Group) error) error {
	c, err := g.Group(name)
	if err != nil {
		if errors.Is(err, ErrNoSuchGroup) {
			return fmt.Errorf("%w: %s has no %q group", ErrNotDataset, g.Path(), name)
		}
		return err
	}
	defer func() { _ = c.Close() }()
	return fn(c)
}

// children calls fn for every child group of g.
func children(g Group, fn func(Group) error) error {
	names, err := g.Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := child(g, name, fn); err != nil {
			return err
		}
	}
	return nil
}
