package health_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/health"
	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/pipeline"
	"github.com/dmitrymomot/edgekit/core/router"
)

func serve(t *testing.T, h handler.HandlerFunc) *host.Response {
	t.Helper()
	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/health", nil, h))
	req := host.NewBufferedRequest(context.Background(), http.MethodGet, nil, nil, nil)
	req.URL.Path = "/health"
	return pipeline.New(r).Serve(context.Background(), req)
}

func TestLiveness(t *testing.T) {
	t.Parallel()
	resp := serve(t, health.Liveness)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "ALIVE", string(resp.Body))
}

func TestNoContent(t *testing.T) {
	t.Parallel()
	resp := serve(t, health.NoContent)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Empty(t, resp.Body)
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("redis down") }

	t.Run("all checks pass", func(t *testing.T) {
		t.Parallel()
		resp := serve(t, health.Readiness(nil, ok, ok))
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, "READY", string(resp.Body))
	})

	t.Run("one check fails", func(t *testing.T) {
		t.Parallel()
		resp := serve(t, health.Readiness(nil, ok, down))
		assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
		assert.JSONEq(t, `{"message":"Service Unavailable","code":503}`, string(resp.Body))
	})

	t.Run("no checks", func(t *testing.T) {
		t.Parallel()
		resp := serve(t, health.Readiness(nil))
		assert.Equal(t, http.StatusOK, resp.Status)
	})
}
