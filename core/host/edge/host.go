// Package edge runs the dispatch pipeline on a fasthttp server, the edge
// runtime. It is the runtime that exposes a response cache and env bindings.
package edge

import (
	"bytes"
	"context"
	"net/url"

	"github.com/valyala/fasthttp"

	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/pkg/clientip"
)

// Name identifies this runtime.
const Name = "edge"

// GeoKey is the fasthttp user value under which an upstream handler may
// store a host.Geo for the request.
const GeoKey = "edgekit.geo"

// Host is the edge runtime.
type Host struct {
	env     map[string]string
	gateway host.CacheGateway
}

// Option configures a Host.
type Option func(*Host)

// WithEnv sets the bindings exposed as ctx.Env.
func WithEnv(env map[string]string) Option {
	return func(h *Host) {
		for k, v := range env {
			h.env[k] = v
		}
	}
}

// WithCacheGateway sets the response cache backend.
func WithCacheGateway(gw host.CacheGateway) Option {
	return func(h *Host) {
		h.gateway = gw
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

// ReadBody implements host.Host. Edge bodies are fully buffered.
func (h *Host) ReadBody(ctx context.Context, req *host.Request) ([]byte, error) {
	return req.ReadBody(ctx)
}

// CacheGateway implements host.Host.
func (h *Host) CacheGateway() host.CacheGateway {
	return h.gateway
}

// Geo implements host.Host. A host.Geo stored under GeoKey wins over the
// cf-ip* headers.
func (h *Host) Geo(req *host.Request) host.Geo {
	ip := clientip.GetIP(req)
	if fctx, ok := req.Raw().(*fasthttp.RequestCtx); ok {
		if g, ok := fctx.UserValue(GeoKey).(host.Geo); ok {
			if g.IP == "" {
				g.IP = ip
			}
			return g
		}
	}
	return host.GeoFromHeaders(req, ip)
}

// Env implements host.Host. The map is shared and must not be modified.
func (h *Host) Env() map[string]string { return h.env }

// NewRequest converts fctx. Headers keep their wire order and the body is
// copied, so the request stays valid after the fasthttp handler returns.
func NewRequest(ctx context.Context, fctx *fasthttp.RequestCtx) (*host.Request, error) {
	var fields []host.Field
	fctx.Request.Header.VisitAll(func(k, v []byte) {
		fields = append(fields, host.Field{Key: string(k), Value: string(v)})
	})

	u, err := url.Parse(string(fctx.URI().FullURI()))
	if err != nil {
		return nil, err
	}

	req := host.NewBufferedRequest(ctx, string(fctx.Method()), u, fields, bytes.Clone(fctx.PostBody()))
	req.RemoteAddr = fctx.RemoteAddr().String()
	req.SetRaw(fctx)
	return req, nil
}

// WriteResponse copies resp into fctx.
func WriteResponse(fctx *fasthttp.RequestCtx, resp *host.Response) {
	for k, vs := range resp.Header {
		for _, v := range vs {
			fctx.Response.Header.Add(k, v)
		}
	}
	fctx.SetStatusCode(resp.Status)

	switch {
	case resp.Stream != nil:
		fctx.SetBodyStream(resp.Stream, -1)
	case resp.Body != nil:
		fctx.SetBody(resp.Body)
	}
}

// Handler adapts d to fasthttp. Each request gets its own cancellable
// context, cancelled when the handler returns.
func Handler(d host.Dispatcher) fasthttp.RequestHandler {
	return func(fctx *fasthttp.RequestCtx) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req, err := NewRequest(ctx, fctx)
		if err != nil {
			fctx.Error(fasthttp.StatusMessage(fasthttp.StatusBadRequest), fasthttp.StatusBadRequest)
			return
		}
		WriteResponse(fctx, d.Serve(ctx, req))
	}
}
