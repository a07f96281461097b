package remote

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/propscan/internal/transport"
	"github.com/agentstation/propscan/pkg/errors"
)

// Option configures an HTTPClient.
type Option func(*config) error

type config struct {
	httpClient *http.Client
	timeout    time.Duration
	auth       transport.Authenticator
	credential string
	rateLimit  float64
	userAgent  string
	observer   func(method string, status int, elapsed time.Duration)
	logger     *zerolog.Logger
}

func defaultConfig() *config {
	return &config{auth: &transport.NoAuth{}}
}

func (c *config) transportOptions() []transport.Option {
	opts := []transport.Option{
		transport.WithHTTPClient(c.httpClient),
		transport.WithTimeout(c.timeout),
		transport.WithRateLimit(c.rateLimit),
		transport.WithObserver(c.observer),
	}
	if c.userAgent != "" {
		opts = append(opts, transport.WithUserAgent(c.userAgent))
	}
	return opts
}

// WithHTTPClient sets the http.Client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) error {
		if hc == nil {
			return &errors.ValidationError{Field: "http_client", Message: "must not be nil"}
		}
		c.httpClient = hc
		return nil
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d < 0 {
			return &errors.ValidationError{Field: "timeout", Value: d, Message: "must not be negative"}
		}
		c.timeout = d
		return nil
	}
}

// WithToken authenticates with a bearer token. An empty token disables
// authentication.
func WithToken(token string) Option {
	return func(c *config) error {
		c.auth = &transport.BearerAuth{}
		c.credential = token
		return nil
	}
}

// WithAuthHeader sends the token in a custom header instead of as a bearer
// token.
func WithAuthHeader(header, token string) Option {
	return func(c *config) error {
		if strings.TrimSpace(header) == "" {
			return &errors.ValidationError{Field: "auth_header", Message: "header name must not be empty"}
		}
		c.auth = &transport.HeaderAuth{Header: header}
		c.credential = token
		return nil
	}
}

// WithAuthQuery sends the token as a query parameter.
func WithAuthQuery(param, token string) Option {
	return func(c *config) error {
		if strings.TrimSpace(param) == "" {
			return &errors.ValidationError{Field: "auth_query", Message: "parameter name must not be empty"}
		}
		c.auth = &transport.QueryAuth{Param: param}
		c.credential = token
		return nil
	}
}

// WithRateLimit paces requests to at most perSecond requests per second.
// Zero disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *config) error {
		if perSecond < 0 {
			return &errors.ValidationError{Field: "rate_limit", Value: perSecond, Message: "must not be negative"}
		}
		c.rateLimit = perSecond
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *config) error {
		c.userAgent = ua
		return nil
	}
}

// WithObserver registers a callback invoked after every request, used to
// record request durations.
func WithObserver(fn func(method string, status int, elapsed time.Duration)) Option {
	return func(c *config) error {
		c.observer = fn
		return nil
	}
}

// WithLogger sets the logger. Without one, the logger is taken from the
// request context.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
