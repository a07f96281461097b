// Package transport is the HTTP plumbing under the remote property client:
// authentication, request pacing, JSON headers and response decoding.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/agentstation/propscan/pkg/constants"
	"github.com/agentstation/propscan/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// ObserveFunc is called after every request with its outcome. Status is 0
// when no response was received.
type ObserveFunc func(method string, status int, elapsed time.Duration)

// Client provides HTTP client functionality with authentication.
type Client struct {
	http       *http.Client
	auth       Authenticator
	credential string
	limiter    *rate.Limiter
	userAgent  string
	observe    ObserveFunc
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the timeout of the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit paces requests to at most perSecond per second. A value of
// zero or less disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), constants.BurstSize)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithObserver registers fn to be called after every request.
func WithObserver(fn ObserveFunc) Option {
	return func(c *Client) {
		c.observe = fn
	}
}

// New creates a new transport client. The authenticator is applied with
// credential on every request when credential is not empty.
func New(auth Authenticator, credential string, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http:       &http.Client{Timeout: DefaultHTTPTimeout},
		auth:       auth,
		credential: credential,
		userAgent:  constants.UserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs an HTTP request with authentication applied and context support.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if c.credential != "" {
		c.auth.Apply(req, c.credential)
	}

	// Set common headers
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req.WithContext(ctx))
	if c.observe != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		c.observe(req.Method, status, time.Since(start))
	}
	return resp, err
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.send(ctx, http.MethodGet, url, nil)
}

// Post performs a POST request with body encoded as JSON.
func (c *Client) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	return c.send(ctx, http.MethodPost, url, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, url string) (*http.Response, error) {
	return c.send(ctx, http.MethodDelete, url, nil)
}

func (c *Client) send(ctx context.Context, method, url string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.WrapParse("json", "request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, errors.WrapResource("create", "request", method+" "+url, err)
	}
	return c.Do(ctx, req)
}
