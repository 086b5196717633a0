package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		client := NewClient()

		assert.Equal(t, 5*time.Second, client.HTTPClient.Timeout)
		assert.Equal(t, 1*time.Second, client.RetryWaitMin)
		assert.Equal(t, 5*time.Second, client.RetryWaitMax)
		assert.Equal(t, 2, client.RetryMax)
	})

	t.Run("applies options", func(t *testing.T) {
		client := NewClient(
			WithTimeout(10*time.Second),
			WithRetryWaitMin(100*time.Millisecond),
			WithRetryWaitMax(time.Second),
			WithRetryMax(5),
		)

		assert.Equal(t, 10*time.Second, client.HTTPClient.Timeout)
		assert.Equal(t, 100*time.Millisecond, client.RetryWaitMin)
		assert.Equal(t, time.Second, client.RetryWaitMax)
		assert.Equal(t, 5, client.RetryMax)
	})
}

func TestGetJSON(t *testing.T) {
	t.Run("encodes params and decodes the response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "tokentx", r.URL.Query().Get("action"))

			w.Write([]byte(`{"status": "1", "message": "OK"}`))
		}))
		t.Cleanup(srv.Close)

		params := url.Values{}
		params.Set("action", "tokentx")

		var out struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		err := GetJSON(t.Context(), NewClient(WithRetryMax(0)), srv.URL, params, &out)

		require.NoError(t, err)
		assert.Equal(t, "1", out.Status)
		assert.Equal(t, "OK", out.Message)
	})

	t.Run("nil params leave the query untouched", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.URL.RawQuery)

			w.Write([]byte(`42`))
		}))
		t.Cleanup(srv.Close)

		var out int
		err := GetJSON(t.Context(), NewClient(WithRetryMax(0)), srv.URL, nil, &out)

		require.NoError(t, err)
		assert.Equal(t, 42, out)
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		t.Cleanup(srv.Close)

		var out any
		err := GetJSON(t.Context(), NewClient(WithRetryMax(0)), srv.URL, nil, &out)

		assert.Error(t, err)
	})

	t.Run("invalid endpoint fails before the request", func(t *testing.T) {
		var out any
		err := GetJSON(t.Context(), NewClient(WithRetryMax(0)), "://not-a-url", nil, &out)

		assert.Error(t, err)
	})

	t.Run("malformed body fails decoding", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		}))
		t.Cleanup(srv.Close)

		var out map[string]any
		err := GetJSON(t.Context(), NewClient(WithRetryMax(0)), srv.URL, nil, &out)

		assert.Error(t, err)
	})
}
