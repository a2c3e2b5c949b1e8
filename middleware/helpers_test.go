package middleware_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/host"
)

func newRawRequest(t *testing.T, method, target string, headers ...host.Field) *host.Request {
	t.Helper()
	u, err := url.Parse(target)
	require.NoError(t, err)
	req := host.NewBufferedRequest(context.Background(), method, u, headers, nil)
	req.RemoteAddr = "203.0.113.7:5555"
	return req
}

func newContext(t *testing.T, raw *host.Request) *handler.Context {
	t.Helper()
	return handler.NewContext(handler.NewRequest(raw), nil, nil)
}

func getContext(t *testing.T, headers ...host.Field) *handler.Context {
	t.Helper()
	return newContext(t, newRawRequest(t, http.MethodGet, "https://example.com/api/items", headers...))
}
