package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformhttp "evolve_backend/internal/platform/http"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGenerator(context.Background(), Config{
		APIKey:     "test-key",
		HTTPClient: platformhttp.NewHTTPClient(5 * time.Second),
		BaseURL:    srv.URL + "/",
	})
	require.NoError(t, err)
	return g
}

func TestNewGenerator_DefaultModel(t *testing.T) {
	g, err := NewGenerator(context.Background(), Config{APIKey: "test-key"})

	require.NoError(t, err)
	assert.Equal(t, DefaultModel, g.model)
}

func TestGenerator_Generate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var path string
		g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello!"}]}}]}`))
		})

		reply, err := g.Generate(context.Background(), "hi")

		require.NoError(t, err)
		assert.Equal(t, "Hello!", reply)
		assert.True(t, strings.HasSuffix(path, DefaultModel+":generateContent"), "unexpected path %q", path)
	})

	t.Run("empty response", func(t *testing.T) {
		g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		})

		_, err := g.Generate(context.Background(), "hi")

		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("upstream error", func(t *testing.T) {
		g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
		})

		_, err := g.Generate(context.Background(), "hi")

		assert.Error(t, err)
	})
}
