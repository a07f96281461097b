package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/agentstation/propscan/internal/server/middleware"
	"github.com/agentstation/propscan/internal/server/response"
	"github.com/agentstation/propscan/pkg/properties"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	collection := s.config.CollectionPath()

	mux.HandleFunc(collection, s.faulty(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.handleList(w)
		case http.MethodPost:
			s.handleCreate(w, r)
		default:
			response.MethodNotAllowed(w, r.Method)
		}
	}))

	mux.HandleFunc(collection+"/", s.faulty(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, collection+"/"))
		if err != nil {
			response.NotFound(w, "Property not found")
			return
		}
		switch r.Method {
		case http.MethodGet:
			s.handleGet(w, id)
		case http.MethodDelete:
			s.handleDelete(w, id)
		default:
			response.MethodNotAllowed(w, r.Method)
		}
	}))
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
		middleware.Auth(s.config.Auth, s.logger),
	)(handler)
}

// faulty records the request and answers with an injected fault if one
// is armed for its method.
func (s *Server) faulty(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if f := s.track(r); f != nil {
			response.Fail(w, f.status, f.message)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleList(w http.ResponseWriter) {
	response.OK(w, properties.Collection{Properties: s.Properties()})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req properties.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Request body is not valid JSON")
		return
	}

	problems := map[string][]string{}
	if req.Property.Name == "" {
		problems["name"] = []string{"Missing data for required field."}
	}
	if req.Property.Pathname == "" {
		problems["pathname"] = []string{"Missing data for required field."}
	}
	if len(problems) > 0 {
		response.Unprocessable(w, problems)
		return
	}

	s.mu.Lock()
	created := s.view(s.insert(req.Property.Pathname, req.Property.Name))
	s.mu.Unlock()

	response.Created(w, properties.Single{Property: created})
}

func (s *Server) handleGet(w http.ResponseWriter, id int) {
	s.mu.Lock()
	rec, ok := s.find(id)
	s.mu.Unlock()
	if !ok {
		response.NotFound(w, "Property not found")
		return
	}
	response.OK(w, properties.Single{Property: s.view(rec)})
}

func (s *Server) handleDelete(w http.ResponseWriter, id int) {
	s.mu.Lock()
	ok := s.remove(id)
	s.mu.Unlock()
	if !ok {
		response.NotFound(w, "Property not found")
		return
	}
	response.NoContent(w)
}
