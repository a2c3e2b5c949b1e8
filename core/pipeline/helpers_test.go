package pipeline_test

import (
	"context"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/edgekit/core/host"
)

type memCache struct {
	mu      sync.Mutex
	entries map[string]*host.Response
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*host.Response)}
}

func (c *memCache) Match(_ context.Context, req *host.Request) (*host.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[host.CacheKey(req)], nil
}

func (c *memCache) Put(_ context.Context, req *host.Request, resp *host.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[host.CacheKey(req)] = resp
	c.puts++
	return nil
}

func (c *memCache) Puts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puts
}

type memGateway struct {
	cache *memCache
}

func (g memGateway) Open(context.Context, string) (host.Cache, error) {
	return g.cache, nil
}

type fakeHost struct {
	env map[string]string
	gw  host.CacheGateway
}

func (h *fakeHost) Name() string { return "fake" }

func (h *fakeHost) ReadBody(ctx context.Context, req *host.Request) ([]byte, error) {
	return req.ReadBody(ctx)
}

func (h *fakeHost) CacheGateway() host.CacheGateway { return h.gw }

func (h *fakeHost) Geo(req *host.Request) host.Geo { return host.GeoFromHeaders(req, "") }

func (h *fakeHost) Env() map[string]string { return h.env }

func newRequest(t *testing.T, method, target string, headers []host.Field, body io.Reader) *host.Request {
	t.Helper()

	u, err := url.Parse(target)
	require.NoError(t, err)
	return host.NewRequest(context.Background(), method, u, headers, body)
}

func strBody(s string) io.Reader {
	return strings.NewReader(s)
}
