// Package nethttp runs the dispatch pipeline on a net/http server.
package nethttp

import (
	"context"
	"maps"
	"net/http"
	"sort"

	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/pkg/clientip"
)

// Name identifies this runtime.
const Name = "nethttp"

// Host is the general-purpose server runtime. It has no response cache.
type Host struct {
	env map[string]string
}

// Option configures a Host.
type Option func(*Host)

// WithEnv sets the bindings exposed as ctx.Env.
func WithEnv(env map[string]string) Option {
	return func(h *Host) {
		maps.Copy(h.env, env)
	}
}

// WithEnviron exposes process environment variables starting with prefix,
// with the prefix stripped.
func WithEnviron(prefix string) Option {
	return func(h *Host) {
		maps.Copy(h.env, host.Environ(prefix))
	}
}

// New creates the runtime.
func New(opts ...Option) *Host {
	h := &Host{env: make(map[string]string)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name implements host.Host.
func (h *Host) Name() string { return Name }

// ReadBody implements host.Host.
func (h *Host) ReadBody(ctx context.Context, req *host.Request) ([]byte, error) {
	return req.ReadBody(ctx)
}

// CacheGateway implements host.Host; this runtime has no response cache.
func (h *Host) CacheGateway() host.CacheGateway { return nil }

// Geo implements host.Host from proxy-injected headers.
func (h *Host) Geo(req *host.Request) host.Geo {
	return host.GeoFromHeaders(req, clientip.GetIP(req))
}

// Env implements host.Host. The map is shared and must not be modified.
func (h *Host) Env() map[string]string { return h.env }

// NewRequest converts r. Headers are ordered by canonical name, values in
// arrival order.
func NewRequest(r *http.Request) *host.Request {
	keys := make([]string, 0, len(r.Header))
	for k := range r.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]host.Field, 0, len(keys))
	for _, k := range keys {
		for _, v := range r.Header[k] {
			fields = append(fields, host.Field{Key: k, Value: v})
		}
	}
	if r.Host != "" && r.Header.Get("Host") == "" {
		fields = append(fields, host.Field{Key: "Host", Value: r.Host})
	}

	u := *r.URL
	if u.Host == "" {
		u.Host = r.Host
	}
	if u.Scheme == "" {
		u.Scheme = "http"
		if r.TLS != nil {
			u.Scheme = "https"
		}
	}

	req := host.NewRequest(r.Context(), r.Method, &u, fields, r.Body)
	req.RemoteAddr = r.RemoteAddr
	req.SetRaw(r)
	return req
}

// Handler adapts d to net/http.
func Handler(d host.Dispatcher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := d.Serve(r.Context(), NewRequest(r))
		_ = resp.Write(w)
	})
}
