package host

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"sync"
)

// Field is a single header entry in arrival order.
type Field struct {
	Key   string
	Value string
}

// Request is the runtime-neutral incoming request.
// Hooks may mutate headers before validation runs.
type Request struct {
	Method     string
	URL        *url.URL
	RemoteAddr string

	ctx     context.Context
	headers []Field
	raw     any
	body    *body
}

// body buffers a read-once source so it can be consumed any number of times.
type body struct {
	src  io.Reader
	once sync.Once
	done chan struct{}
	data []byte
	err  error
}

// NewRequest creates a request whose body is a read-once stream.
// A nil body reads as empty.
func NewRequest(ctx context.Context, method string, u *url.URL, headers []Field, src io.Reader) *Request {
	if ctx == nil {
		ctx = context.Background()
	}
	if u == nil {
		u = &url.URL{Path: "/"}
	}
	return &Request{
		Method:  strings.ToUpper(method),
		URL:     u,
		ctx:     ctx,
		headers: headers,
		body:    &body{src: src},
	}
}

// NewBufferedRequest creates a request whose body is already in memory.
func NewBufferedRequest(ctx context.Context, method string, u *url.URL, headers []Field, data []byte) *Request {
	r := NewRequest(ctx, method, u, headers, nil)
	r.body.done = make(chan struct{})
	r.body.data = data
	close(r.body.done)
	r.body.once.Do(func() {})
	return r
}

// Context returns the request context.
func (r *Request) Context() context.Context {
	return r.ctx
}

// SetRaw attaches the runtime-specific request object.
func (r *Request) SetRaw(raw any) {
	r.raw = raw
}

// Raw returns the runtime-specific request object (*http.Request,
// *fasthttp.RequestCtx) or nil.
func (r *Request) Raw() any {
	return r.raw
}

// Path returns the URL path, "/" when empty.
func (r *Request) Path() string {
	if r.URL.Path == "" {
		return "/"
	}
	return r.URL.Path
}

// Header returns the first value of the named header, case-insensitively.
func (r *Request) Header(name string) string {
	for _, f := range r.headers {
		if strings.EqualFold(f.Key, name) {
			return f.Value
		}
	}
	return ""
}

// HasHeader reports whether the named header is present.
func (r *Request) HasHeader(name string) bool {
	for _, f := range r.headers {
		if strings.EqualFold(f.Key, name) {
			return true
		}
	}
	return false
}

// Headers returns a copy of all header entries in arrival order.
func (r *Request) Headers() []Field {
	out := make([]Field, len(r.headers))
	copy(out, r.headers)
	return out
}

// SetHeader replaces every entry of the named header with a single value.
func (r *Request) SetHeader(name, value string) {
	out := r.headers[:0]
	for _, f := range r.headers {
		if !strings.EqualFold(f.Key, name) {
			out = append(out, f)
		}
	}
	r.headers = append(out, Field{Key: name, Value: value})
}

// ReadBody returns the whole body. The underlying source is drained once;
// later calls return the buffered bytes. Cancelling ctx abandons the wait but
// not the in-flight read, which a later call may still pick up.
func (r *Request) ReadBody(ctx context.Context) ([]byte, error) {
	b := r.body
	b.once.Do(func() {
		b.done = make(chan struct{})
		if b.src == nil {
			close(b.done)
			return
		}
		go func() {
			defer close(b.done)
			b.data, b.err = io.ReadAll(b.src)
		}()
	})

	select {
	case <-b.done:
		return b.data, b.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// BodyReader returns a fresh reader over the buffered body.
func (r *Request) BodyReader(ctx context.Context) (io.Reader, error) {
	data, err := r.ReadBody(ctx)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
