// Package properties defines the two representations of a dataset property
// that propscan reconciles: the locally discovered DatasetProperty and the
// RemoteProperty record served by the property service. Both reduce to the
// same structural Key.
package properties

import (
	"encoding/json"
	"fmt"
)

// DatasetProperty is one property discovered inside a dataset file.
type DatasetProperty struct {
	// DatasetPath identifies the dataset file, possibly after rewriting.
	DatasetPath string `json:"pathname" yaml:"pathname"`

	// InternalPath is the hierarchical path of the property inside the dataset.
	InternalPath string `json:"name" yaml:"name"`
}

// New returns a DatasetProperty.
func New(datasetPath, internalPath string) DatasetProperty {
	return DatasetProperty{DatasetPath: datasetPath, InternalPath: internalPath}
}

// Key returns the structural key of the property.
func (p DatasetProperty) Key() Key {
	return KeyOf(p.DatasetPath, p.InternalPath)
}

// String implements fmt.Stringer.
func (p DatasetProperty) String() string {
	return p.Key().String()
}

// Links holds the hyperlinks the service attaches to a property record.
type Links struct {
	Self       string `json:"self" yaml:"self"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
}

// RemoteProperty is a property record as returned by the property service.
// Only name, pathname and _links are interpreted; other fields are ignored.
type RemoteProperty struct {
	Name     string `json:"name" yaml:"name"`
	Pathname string `json:"pathname" yaml:"pathname"`
	Links    Links  `json:"_links" yaml:"links"`
}

// Key returns the structural key of the record.
func (p RemoteProperty) Key() Key {
	return KeyOf(p.Pathname, p.Name)
}

// Self returns the resource link addressing this record.
func (p RemoteProperty) Self() string {
	return p.Links.Self
}

// Key identifies a property by dataset pathname and property name.
// Two properties are the same logical entity iff their keys are equal.
type Key struct {
	Pathname string
	Name     string
}

// KeyOf builds the key of a (pathname, name) pair.
func KeyOf(pathname, name string) Key {
	return Key{Pathname: pathname, Name: name}
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Pathname, k.Name)
}

// KeySet is a lookup set of property keys.
type KeySet map[Key]struct{}

// NewKeySet returns the set of keys of the given remote records.
func NewKeySet(remote ...RemoteProperty) KeySet {
	set := make(KeySet, len(remote))
	for _, p := range remote {
		set.Add(p.Key())
	}
	return set
}

// Add inserts a key.
func (s KeySet) Add(k Key) {
	s[k] = struct{}{}
}

// Has reports whether the key is present.
func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Len returns the number of keys.
func (s KeySet) Len() int {
	return len(s)
}

// NewProperty is the payload of a create request.
type NewProperty struct {
	Name     string `json:"name"`
	Pathname string `json:"pathname"`
}

// CreateRequest is the body POSTed to the collection.
type CreateRequest struct {
	Property NewProperty `json:"property"`
}

// NewCreateRequest builds the create body for a discovered property.
func NewCreateRequest(p DatasetProperty) CreateRequest {
	return CreateRequest{Property: NewProperty{Name: p.InternalPath, Pathname: p.DatasetPath}}
}

// Collection is the envelope of a GET on the collection.
type Collection struct {
	Properties []RemoteProperty `json:"properties"`
}

// Single is the envelope of a created property.
type Single struct {
	Property RemoteProperty `json:"property"`
}

// ErrorBody is the JSON body the service returns on failure. The message
// is either a plain string or an object of per-field validation errors.
type ErrorBody struct {
	Message json.RawMessage `json:"message"`
}

// Text renders the message as a single line.
func (b ErrorBody) Text() string {
	if len(b.Message) == 0 || string(b.Message) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Message, &s); err == nil {
		return s
	}
	var v any
	if err := json.Unmarshal(b.Message, &v); err != nil {
		return string(b.Message)
	}
	compact, err := json.Marshal(v)
	if err != nil {
		return string(b.Message)
	}
	return string(compact)
}
