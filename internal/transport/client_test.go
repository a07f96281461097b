package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/propscan/pkg/errors"
)

func TestClientSetsHeaders(t *testing.T) {
	var got http.Header
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(&BearerAuth{}, "secret", WithUserAgent("propscan-test"))
	resp, err := c.Post(context.Background(), srv.URL, map[string]string{"name": "p"})
	require.NoError(t, err)
	Close(resp)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Bearer secret", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "propscan-test", got.Get("User-Agent"))
	assert.Equal(t, map[string]any{"name": "p"}, body)
}

func TestClientWithoutCredentialSkipsAuth(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	c := New(&BearerAuth{}, "")
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	Close(resp)

	assert.Empty(t, got.Get("Authorization"))
	assert.Empty(t, got.Get("Content-Type"))
}

func TestClientObserver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var mu sync.Mutex
	var methods []string
	var statuses []int
	c := New(nil, "", WithObserver(func(method string, status int, _ time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		methods = append(methods, method)
		statuses = append(statuses, status)
	}))

	resp, err := c.Delete(context.Background(), srv.URL)
	require.NoError(t, err)
	Close(resp)

	assert.Equal(t, []string{http.MethodDelete}, methods)
	assert.Equal(t, []int{http.StatusNoContent}, statuses)
}

func TestClientRateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	// One request per minute: the first consumes the burst, the second must wait.
	c := New(nil, "", WithRateLimit(1.0/60))
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	Close(resp)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Get(ctx, srv.URL)
	assert.Error(t, err)
}

func TestDecodeJSON(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"properties": []}`)),
	}
	var target struct {
		Properties []any `json:"properties"`
	}
	require.NoError(t, DecodeJSON(resp, &target))
	assert.NotNil(t, target.Properties)

	resp = &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`not json`)),
	}
	err := DecodeJSON(resp, &target)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestReadErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string message", http.StatusBadRequest, `{"message": "Property already exists"}`, "Property already exists"},
		{"field errors", http.StatusUnprocessableEntity, `{"message": {"name": ["Missing data"]}}`, `{"name":["Missing data"]}`},
		{"plain text", http.StatusConflict, "duplicate", "duplicate"},
		{"html", http.StatusInternalServerError, "<html>boom</html>", "internal server error"},
		{"empty", http.StatusBadGateway, "", "bad gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{
				StatusCode: tt.status,
				Body:       io.NopCloser(strings.NewReader(tt.body)),
			}
			assert.Equal(t, tt.want, ReadErrorMessage(resp))
		})
	}
}
