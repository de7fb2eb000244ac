package freshness

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes state", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"season":"2025","week":3,"season_type":"regular"}`))
		}))
		defer server.Close()

		state, err := NewHTTPSource(server.URL).CurrentState(ctx)
		require.NoError(t, err)
		assert.Equal(t, State{Season: "2025", Week: 3}, state)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL).CurrentState(ctx)
		assert.Error(t, err)
	})

	t.Run("missing season is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"week":3}`))
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL).CurrentState(ctx)
		assert.Error(t, err)
	})

	t.Run("request timeout is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"season":"2025","week":3}`))
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL, WithRequestTimeout(20*time.Millisecond)).CurrentState(ctx)
		assert.Error(t, err)
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{`))
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL).CurrentState(ctx)
		assert.Error(t, err)
	})
}
