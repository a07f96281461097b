package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/propscan/internal/server"
	"github.com/agentstation/propscan/internal/server/middleware"
	"github.com/agentstation/propscan/pkg/errors"
	"github.com/agentstation/propscan/pkg/logging"
	"github.com/agentstation/propscan/pkg/properties"
	"github.com/agentstation/propscan/pkg/remote"
)

// newService starts an in-memory property service and a client for it.
func newService(t *testing.T, cfg server.Config, opts ...remote.Option) (*server.Server, *remote.HTTPClient) {
	t.Helper()
	svc := server.New(cfg, logging.NewNopLogger())
	ts := httptest.NewServer(svc.Handler())
	t.Cleanup(ts.Close)

	opts = append([]remote.Option{remote.WithLogger(logging.NewNopLogger())}, opts...)
	client, err := remote.New(ts.URL+cfg.CollectionPath(), opts...)
	require.NoError(t, err)
	return svc, client
}

func TestListCreateDelete(t *testing.T) {
	svc, client := newService(t, server.DefaultConfig())
	ctx := context.Background()

	list, err := client.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	prop := properties.New("/data/a.lue", "/phenomena/areas/property_sets/constant/properties/elevation")
	created, err := client.Create(ctx, prop)
	require.NoError(t, err)
	assert.Equal(t, prop.Key(), created.Key())
	assert.Equal(t, "/api/properties/1", created.Self())

	list, err = client.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, prop.Key(), list[0].Key())

	require.NoError(t, client.Delete(ctx, created.Self()))
	assert.Empty(t, svc.Properties())
}

func TestListFailure(t *testing.T) {
	svc, client := newService(t, server.DefaultConfig())
	svc.Fail(http.MethodGet, http.StatusInternalServerError, "database down")

	_, err := client.List(context.Background())
	require.Error(t, err)

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "cannot get collection of properties", apiErr.Message)
	assert.True(t, errors.IsRemoteUnavailable(err))
}

func TestCreateFailureCarriesServerMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
	}{
		{"bad request", http.StatusBadRequest, "Property already exists"},
		{"server error", http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, client := newService(t, server.DefaultConfig())
			svc.Fail(http.MethodPost, tt.status, tt.message)

			_, err := client.Create(context.Background(), properties.New("/data/a.lue", "/p"))
			require.Error(t, err)

			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCreateValidationMessage(t *testing.T) {
	_, client := newService(t, server.DefaultConfig())

	_, err := client.Create(context.Background(), properties.New("/data/a.lue", ""))
	require.Error(t, err)

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "Missing data for required field.")
}

func TestDeleteFailure(t *testing.T) {
	svc, client := newService(t, server.DefaultConfig())
	p := svc.Seed("/data/a.lue", "/p")
	svc.Fail(http.MethodDelete, http.StatusConflict, "locked")

	err := client.Delete(context.Background(), p.Self())

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "cannot delete property", apiErr.Message)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Len(t, svc.Properties(), 1)
}

func TestDeleteUnknownLink(t *testing.T) {
	_, client := newService(t, server.DefaultConfig())

	err := client.Delete(context.Background(), "/api/properties/42")

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestBearerToken(t *testing.T) {
	cfg := server.DefaultConfig()
	cfg.Auth = middleware.AuthConfig{Enabled: true, Token: "secret"}

	_, anonymous := newService(t, cfg)
	_, err := anonymous.List(context.Background())
	assert.True(t, errors.IsUnauthorized(err))

	_, authed := newService(t, cfg, remote.WithToken("secret"))
	_, err = authed.List(context.Background())
	assert.NoError(t, err)
}

func TestAuthHeader(t *testing.T) {
	cfg := server.DefaultConfig()
	cfg.Auth = middleware.AuthConfig{Enabled: true, Token: "secret", HeaderName: "X-Api-Key"}

	_, client := newService(t, cfg, remote.WithAuthHeader("X-Api-Key", "secret"))
	_, err := client.List(context.Background())
	assert.NoError(t, err)
}

func TestObserver(t *testing.T) {
	var mu sync.Mutex
	var methods []string
	svc, client := newService(t, server.DefaultConfig(), remote.WithObserver(func(method string, _ int, _ time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		methods = append(methods, method)
	}))
	p := svc.Seed("/data/a.lue", "/p")

	_, err := client.List(context.Background())
	require.NoError(t, err)
	require.NoError(t, client.Delete(context.Background(), p.Self()))

	assert.Equal(t, []string{http.MethodGet, http.MethodDelete}, methods)
}

func TestCanceledContext(t *testing.T) {
	_, client := newService(t, server.DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve(t *testing.T) {
	client, err := remote.New("https://example.org:8443/api/properties")
	require.NoError(t, err)

	assert.Equal(t, "https://example.org:8443/api/properties/7", client.Resolve("/api/properties/7"))
	assert.Equal(t, "https://example.org:8443/api/properties/7", client.Resolve("api/properties/7"))
	assert.Equal(t, "http://other/api/properties/7", client.Resolve("http://other/api/properties/7"))
	assert.Equal(t, "https://example.org:8443/api/properties", client.CollectionURI())
}

func TestNewValidation(t *testing.T) {
	for _, uri := range []string{"", "localhost:5000/api", "ftp://host/api", "http://"} {
		_, err := remote.New(uri)
		assert.True(t, errors.IsValidationError(err), uri)
	}

	_, err := remote.New("http://localhost/api", remote.WithRateLimit(-1))
	assert.True(t, errors.IsValidationError(err))

	_, err = remote.New("http://localhost/api", remote.WithAuthHeader("", "x"))
	assert.True(t, errors.IsValidationError(err))

	_, err = remote.New("http://localhost/api", remote.WithHTTPClient(nil))
	assert.True(t, errors.IsValidationError(err))
}
