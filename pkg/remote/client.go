// Package remote is the client of the property service: a collection of
// property records reached over HTTP that can be listed, extended and
// pruned by resource link.
package remote

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/propscan/internal/transport"
	"github.com/agentstation/propscan/pkg/errors"
	"github.com/agentstation/propscan/pkg/logging"
	"github.com/agentstation/propscan/pkg/properties"
)

// Messages reported when the service answers with an unexpected status.
const (
	msgCannotList   = "cannot get collection of properties"
	msgCannotDelete = "cannot delete property"
	msgCannotCreate = "cannot create property"
)

// Client is the remote property collection.
type Client interface {
	// List returns every record of the collection.
	List(ctx context.Context) ([]properties.RemoteProperty, error)

	// Create adds a record for p and returns the record as stored.
	Create(ctx context.Context, p properties.DatasetProperty) (*properties.RemoteProperty, error)

	// Delete removes the record addressed by its resource link.
	Delete(ctx context.Context, link string) error
}

// HTTPClient talks to the property service over HTTP.
type HTTPClient struct {
	collection string
	base       *url.URL
	transport  *transport.Client
	logger     *zerolog.Logger
}

var _ Client = (*HTTPClient)(nil)

// New creates a client for the collection at collectionURI. Resource links
// returned by the service are resolved against the scheme and host of
// that URI.
func New(collectionURI string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(collectionURI)
	if err != nil {
		return nil, &errors.ValidationError{
			Field:   "uri",
			Value:   collectionURI,
			Message: err.Error(),
		}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &errors.ValidationError{
			Field:   "uri",
			Value:   collectionURI,
			Message: "expected an absolute http or https URI",
		}
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return &HTTPClient{
		collection: collectionURI,
		base:       &url.URL{Scheme: u.Scheme, Host: u.Host},
		transport:  transport.New(cfg.auth, cfg.credential, cfg.transportOptions()...),
		logger:     cfg.logger,
	}, nil
}

// CollectionURI returns the URI of the collection.
func (c *HTTPClient) CollectionURI() string {
	return c.collection
}

// List implements Client.
func (c *HTTPClient) List(ctx context.Context) ([]properties.RemoteProperty, error) {
	resp, err := c.transport.Get(ctx, c.collection)
	if err != nil {
		return nil, requestFailed(http.MethodGet, c.collection, msgCannotList, err)
	}
	if resp.StatusCode != http.StatusOK {
		transport.Close(resp)
		return nil, errors.NewAPIError(http.MethodGet, c.collection, resp.StatusCode, msgCannotList)
	}

	var body properties.Collection
	if err := transport.DecodeJSON(resp, &body); err != nil {
		return nil, &errors.APIError{
			Method:   http.MethodGet,
			Endpoint: c.collection,
			Message:  msgCannotList,
			Err:      err,
		}
	}

	c.log(ctx).Debug().
		Str("collection", c.collection).
		Int("count", len(body.Properties)).
		Msg("Listed remote properties")
	return body.Properties, nil
}

// Create implements Client. A failure carries the message the service put
// in its error body.
func (c *HTTPClient) Create(ctx context.Context, p properties.DatasetProperty) (*properties.RemoteProperty, error) {
	resp, err := c.transport.Post(ctx, c.collection, properties.NewCreateRequest(p))
	if err != nil {
		return nil, requestFailed(http.MethodPost, c.collection, msgCannotCreate, err)
	}
	if resp.StatusCode != http.StatusCreated {
		msg := transport.ReadErrorMessage(resp)
		return nil, errors.NewAPIError(http.MethodPost, c.collection, resp.StatusCode, msg)
	}

	var body properties.Single
	if err := transport.DecodeJSON(resp, &body); err != nil {
		// The record exists; only its echo is unreadable.
		c.log(ctx).Debug().Err(err).Str("property", p.String()).Msg("Ignoring unreadable create response")
		body.Property = properties.RemoteProperty{Name: p.InternalPath, Pathname: p.DatasetPath}
	}
	return &body.Property, nil
}

// Delete implements Client.
func (c *HTTPClient) Delete(ctx context.Context, link string) error {
	target := c.Resolve(link)
	resp, err := c.transport.Delete(ctx, target)
	if err != nil {
		return requestFailed(http.MethodDelete, target, msgCannotDelete, err)
	}
	defer transport.Close(resp)

	if resp.StatusCode != http.StatusNoContent {
		return errors.NewAPIError(http.MethodDelete, target, resp.StatusCode, msgCannotDelete)
	}
	return nil
}

// Resolve turns a resource link into the URL to request. Relative links
// are appended to the scheme and host of the collection URI; absolute
// links are used as they are.
func (c *HTTPClient) Resolve(link string) string {
	if u, err := url.Parse(link); err == nil && u.IsAbs() {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return c.base.String() + link
}

func (c *HTTPClient) log(ctx context.Context) *zerolog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return logging.FromContext(ctx)
}

// requestFailed reports a request that got no response at all. The cause,
// a canceled context included, stays reachable through errors.Is.
func requestFailed(method, endpoint, message string, err error) error {
	return &errors.APIError{
		Method:   method,
		Endpoint: endpoint,
		Message:  message,
		Err:      err,
	}
}
