package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL string) *apiClient {
	c, err := NewAPIClient(ArgsAPIClient{
		Credential: common.Credential{APIKey: "key123", StorePrefix: "shop"},
		BaseURL:    serverURL,
		UserAgent:  "picqer-stats/test",
		Timeout:    time.Second,
	})
	require.NoError(t, err)

	return c
}

func TestNewAPIClient(t *testing.T) {
	t.Parallel()

	t.Run("empty API key should error", func(t *testing.T) {
		c, err := NewAPIClient(ArgsAPIClient{
			Credential: common.Credential{StorePrefix: "shop"},
			BaseDomain: "picqer.com",
		})
		assert.Nil(t, c)
		assert.True(t, c.IsInterfaceNil())
		assert.ErrorIs(t, err, ErrNilArgument)
	})
	t.Run("empty store prefix should error", func(t *testing.T) {
		c, err := NewAPIClient(ArgsAPIClient{
			Credential: common.Credential{APIKey: "key"},
			BaseDomain: "picqer.com",
		})
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrNilArgument)
	})
	t.Run("should build the base URL", func(t *testing.T) {
		c, err := NewAPIClient(ArgsAPIClient{
			Credential: common.Credential{APIKey: "key", StorePrefix: "shop"},
			BaseDomain: "picqer.com",
		})
		require.NoError(t, err)
		assert.False(t, c.IsInterfaceNil())
		assert.Equal(t, "https://shop.picqer.com/api/v1/stats/open-orders", c.buildURL("stats/open-orders", nil))
		assert.Equal(t, "https://shop.picqer.com/api/v1/picklists?limit=100&offset=0",
			c.buildURL("/picklists", url.Values{"offset": {"0"}, "limit": {"100"}}))
	})
	t.Run("base URL overrides the composition", func(t *testing.T) {
		c, err := NewAPIClient(ArgsAPIClient{
			Credential: common.Credential{APIKey: "key", StorePrefix: "shop"},
			BaseURL:    "http://127.0.0.1:8080/",
		})
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:8080/api/v1/stats/backorders", c.buildURL("stats/backorders", nil))
	})
	t.Run("missing domain and base URL should error", func(t *testing.T) {
		c, err := NewAPIClient(ArgsAPIClient{
			Credential: common.Credential{APIKey: "key", StorePrefix: "shop"},
		})
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrNilArgument)
	})
}

func TestAPIClient_Get(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key123" || pass != "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch r.URL.Path {
		case "/api/v1/stats/open-orders":
			require.Equal(t, "picqer-stats/test", r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(`{"value": 7}`))
		case "/api/v1/picklists":
			_, _ = w.Write([]byte(`[{"q":"` + r.URL.Query().Get("status") + `"}]`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	t.Run("should return the body", func(t *testing.T) {
		body, err := c.Get(context.Background(), "stats/open-orders", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"value": 7}`, string(body))
	})
	t.Run("should pass the query", func(t *testing.T) {
		body, err := c.Get(context.Background(), "picklists", url.Values{"status": {"closed"}})
		require.NoError(t, err)
		assert.JSONEq(t, `[{"q":"closed"}]`, string(body))
	})
	t.Run("non-2xx should return a status error", func(t *testing.T) {
		body, err := c.Get(context.Background(), "stats/broken", nil)
		assert.Nil(t, body)
		require.ErrorIs(t, err, ErrHTTPStatus)
		assert.False(t, errors.Is(err, ErrTransport))

		var statusErr *HTTPStatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		assert.Contains(t, err.Error(), "500")
	})
	t.Run("wrong key should return a status error", func(t *testing.T) {
		other := *c
		other.apiKey = "wrong"

		_, err := other.Get(context.Background(), "stats/open-orders", nil)
		var statusErr *HTTPStatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	})
}

func TestAPIClient_OversizedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/at-limit":
			_, _ = w.Write([]byte(strings.Repeat(" ", maxResponseBodySize)))
		default:
			_, _ = w.Write([]byte(strings.Repeat(" ", maxResponseBodySize+1)))
		}
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	t.Run("body above the limit should return a shape error", func(t *testing.T) {
		body, err := c.Get(context.Background(), "too-large", nil)
		assert.Nil(t, body)
		require.ErrorIs(t, err, ErrShape)
		assert.Contains(t, err.Error(), "exceeds")
	})
	t.Run("body at the limit should be returned whole", func(t *testing.T) {
		body, err := c.Get(context.Background(), "at-limit", nil)
		require.NoError(t, err)
		assert.Len(t, body, maxResponseBodySize)
	})
}

func TestAPIClient_TransportError(t *testing.T) {
	t.Parallel()

	c, err := NewAPIClient(ArgsAPIClient{
		Credential: common.Credential{APIKey: "key", StorePrefix: "shop"},
		BaseDomain: "invalid",
		Scheme:     "http",
		Timeout:    time.Second,
	})
	require.NoError(t, err)
	c.baseURL = "http://127.0.0.1:1"

	_, err = c.Get(context.Background(), "stats/open-orders", nil)
	require.ErrorIs(t, err, ErrTransport)
	assert.False(t, errors.Is(err, ErrHTTPStatus))
	assert.False(t, errors.Is(err, ErrShape))
}

func TestAPIClient_Post(t *testing.T) {
	t.Parallel()

	var calledPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		calledPath = r.URL.Path
		if strings.Contains(r.URL.Path, "/missing/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	err := c.Post(context.Background(), "picklists/batches/12/reset")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/picklists/batches/12/reset", calledPath)

	err = c.Post(context.Background(), "picklists/batches/missing/reset")
	assert.ErrorIs(t, err, ErrHTTPStatus)
}
