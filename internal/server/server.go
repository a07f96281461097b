// Package server implements an in-memory property service speaking the
// same resource API propscan reconciles against: a collection of property
// records that can be listed, created and deleted by link. It backs the
// HTTP tests of the client, the reconciler and the command line, and can
// be told to fail selected requests.
package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/propscan/pkg/properties"
)

// Request is a request received by the server.
type Request struct {
	Method string
	Path   string
}

// fault makes requests of one method fail once after requests succeeded.
type fault struct {
	after   int
	status  int
	message string
}

type record struct {
	id       int
	name     string
	pathname string
}

// Server holds the property collection.
type Server struct {
	mu       sync.Mutex
	config   Config
	logger   *zerolog.Logger
	nextID   int
	records  []record
	requests []Request
	faults   map[string]*fault
}

// New creates a new server instance with the given configuration.
func New(cfg Config, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Server{
		config: cfg,
		logger: logger,
		nextID: 1,
		faults: make(map[string]*fault),
	}
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Seed adds a record directly and returns it as the API would.
func (s *Server) Seed(pathname, name string) properties.RemoteProperty {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(s.insert(pathname, name))
}

// Properties returns the current records in creation order.
func (s *Server) Properties() []properties.RemoteProperty {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]properties.RemoteProperty, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, s.view(r))
	}
	return out
}

// Requests returns every request received, in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns the number of requests received with the given method.
func (s *Server) Count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method {
			n++
		}
	}
	return n
}

// Fail makes every request with method fail with status and message.
func (s *Server) Fail(method string, status int, message string) {
	s.FailAfter(method, 0, status, message)
}

// FailAfter lets n requests with method succeed and fails the rest with
// status and message.
func (s *Server) FailAfter(method string, n, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[method] = &fault{after: n, status: status, message: message}
}

// track logs r and returns the fault to answer it with, if any.
func (s *Server) track(r *http.Request) *fault {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path})
	f, ok := s.faults[r.Method]
	if !ok {
		return nil
	}
	if f.after > 0 {
		f.after--
		return nil
	}
	return f
}

func (s *Server) insert(pathname, name string) record {
	r := record{id: s.nextID, name: name, pathname: pathname}
	s.nextID++
	s.records = append(s.records, r)
	return r
}

func (s *Server) remove(id int) bool {
	for i, r := range s.records {
		if r.id == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Server) find(id int) (record, bool) {
	for _, r := range s.records {
		if r.id == id {
			return r, true
		}
	}
	return record{}, false
}

func (s *Server) view(r record) properties.RemoteProperty {
	collection := s.config.CollectionPath()
	return properties.RemoteProperty{
		Name:     r.name,
		Pathname: r.pathname,
		Links: properties.Links{
			Self:       fmt.Sprintf("%s/%d", collection, r.id),
			Collection: collection,
		},
	}
}
