package host

import "context"

// Host is the capability set a hosting runtime exposes to the pipeline.
// Implementations are selected once at startup; the pipeline never branches
// on the runtime identity.
type Host interface {
	// Name identifies the runtime in logs and metrics.
	Name() string

	// ReadBody returns the full request body, honoring ctx cancellation.
	ReadBody(ctx context.Context, req *Request) ([]byte, error)

	// CacheGateway returns the response cache of the runtime or nil when the
	// runtime has none.
	CacheGateway() CacheGateway

	// Geo returns the geolocation fields the runtime knows about the client.
	Geo(req *Request) Geo

	// Env returns the key-value bindings handed to every request context.
	Env() map[string]string
}

// CacheGateway opens named response caches.
type CacheGateway interface {
	Open(ctx context.Context, name string) (Cache, error)
}

// Cache stores GET responses keyed by request identity.
type Cache interface {
	// Match returns a cached response or nil on a miss.
	Match(ctx context.Context, req *Request) (*Response, error)
	// Put stores resp for req. resp must be a buffered response.
	Put(ctx context.Context, req *Request, resp *Response) error
}

// CacheKey returns the identity a cache uses for req.
func CacheKey(req *Request) string {
	return req.Method + " " + req.URL.String()
}

// Blob is a binary payload tagged with its media type.
type Blob struct {
	Type string
	Data []byte
}

// Size returns the payload length in bytes.
func (b Blob) Size() int {
	return len(b.Data)
}

// Dispatcher serves runtime-neutral requests. Runtime adapters translate
// their native request into a Request, call Serve and write the Response back.
type Dispatcher interface {
	Serve(ctx context.Context, req *Request) *Response
}
