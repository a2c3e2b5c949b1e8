package handler

import (
	"time"

	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/pkg/clientip"
)

// DefaultBodyTimeout bounds every body read.
const DefaultBodyTimeout = 3 * time.Second

// Parsed carries the output of the validation stage.
type Parsed struct {
	Headers map[string]string
	Query   map[string]any
	Cookies map[string]string
	Body    any
}

// Request exposes the incoming request to hooks and handlers. Headers, query
// and cookies come from the validation stage when it ran and are computed
// lazily from the raw request otherwise.
type Request struct {
	raw    *host.Request
	host   host.Host
	params map[string]string

	bodyTimeout time.Duration
	headerLimit int
	cookieLimit int

	parsed  bool
	body    any
	headers map[string]string
	query   map[string]any
	cookies map[string]string
	ip      string
	geo     *host.Geo
}

// RequestOption configures a Request.
type RequestOption func(*Request)

// WithHost sets the runtime used for body reads and geo lookups.
func WithHost(h host.Host) RequestOption {
	return func(r *Request) {
		r.host = h
	}
}

// WithParams sets the route parameters.
func WithParams(params map[string]string) RequestOption {
	return func(r *Request) {
		r.params = params
	}
}

// WithParsed installs validated headers, query, cookies and body.
func WithParsed(p Parsed) RequestOption {
	return func(r *Request) {
		r.parsed = true
		r.headers = p.Headers
		r.query = p.Query
		r.cookies = p.Cookies
		r.body = p.Body
	}
}

// WithBodyTimeout overrides DefaultBodyTimeout.
func WithBodyTimeout(d time.Duration) RequestOption {
	return func(r *Request) {
		if d > 0 {
			r.bodyTimeout = d
		}
	}
}

// WithLimits overrides the header entry and cookie length limits.
func WithLimits(headers, cookies int) RequestOption {
	return func(r *Request) {
		if headers > 0 {
			r.headerLimit = headers
		}
		if cookies > 0 {
			r.cookieLimit = cookies
		}
	}
}

// NewRequest wraps a raw request.
func NewRequest(raw *host.Request, opts ...RequestOption) *Request {
	r := &Request{
		raw:         raw,
		bodyTimeout: DefaultBodyTimeout,
		headerLimit: DefaultHeaderLimit,
		cookieLimit: DefaultCookieLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Raw returns the runtime-neutral request.
func (r *Request) Raw() *host.Request {
	return r.raw
}

// Method returns the request method.
func (r *Request) Method() string {
	return r.raw.Method
}

// Path returns the request path.
func (r *Request) Path() string {
	return r.raw.Path()
}

// Param returns a route parameter or "".
func (r *Request) Param(name string) string {
	return r.params[name]
}

// Params returns the route parameters.
func (r *Request) Params() map[string]string {
	return r.params
}

// IP returns the resolved client address.
func (r *Request) IP() string {
	if r.ip == "" {
		r.ip = clientip.GetIP(r.raw)
	}
	return r.ip
}

// Geo returns the client geolocation known to the runtime.
func (r *Request) Geo() host.Geo {
	if r.geo == nil {
		var g host.Geo
		if r.host != nil {
			g = r.host.Geo(r.raw)
		} else {
			g = host.GeoFromHeaders(r.raw, r.IP())
		}
		if g.IP == "" {
			g.IP = r.IP()
		}
		r.geo = &g
	}
	return *r.geo
}

// Validated reports whether headers, query, cookies and body came from the
// validation stage.
func (r *Request) Validated() bool {
	return r.parsed
}

// Headers returns lower-cased request headers.
func (r *Request) Headers() map[string]string {
	if r.headers == nil {
		r.headers = CollectHeaders(r.raw, r.headerLimit)
	}
	return r.headers
}

// Header returns a single header by lower-cased name.
func (r *Request) Header(name string) string {
	if v, ok := r.Headers()[name]; ok {
		return v
	}
	return r.raw.Header(name)
}

// Query returns the coerced query parameters.
func (r *Request) Query() map[string]any {
	if r.query == nil {
		r.query = CoerceQuery(r.raw.URL.Query())
	}
	return r.query
}

// Cookies returns the cookies sent in the cookies header. An oversized
// header reads as no cookies here; the validation stage rejects it.
func (r *Request) Cookies() map[string]string {
	if r.cookies == nil {
		c, err := ParseCookies(r.raw.Header(CookieHeader), r.cookieLimit)
		if err != nil {
			c = map[string]string{}
		}
		r.cookies = c
	}
	return r.cookies
}

// Cookie returns a single cookie value.
func (r *Request) Cookie(name string) string {
	return r.Cookies()[name]
}

// Body returns the validated body, nil when the route has no body schema.
func (r *Request) Body() any {
	return r.body
}
