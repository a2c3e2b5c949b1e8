package handler

import (
	"context"
	"time"

	"github.com/dmitrymomot/edgekit/core/response"
)

// WaitUntilFunc registers background work that may outlive the response.
type WaitUntilFunc func(fn func(ctx context.Context) error)

// Context is the per-dispatch bundle handed to hooks and handlers.
// It implements context.Context by delegating to the request context.
// A Context belongs to one dispatch and is not safe for concurrent use.
type Context struct {
	Env map[string]string
	Req *Request
	Res *response.State

	values    map[any]any
	waitUntil WaitUntilFunc
}

// NewContext creates a dispatch context over req with a fresh response state.
// A nil waitUntil runs background work on its own goroutine.
func NewContext(req *Request, env map[string]string, waitUntil WaitUntilFunc) *Context {
	if env == nil {
		env = map[string]string{}
	}
	return &Context{
		Env:       env,
		Req:       req,
		Res:       response.NewState(),
		waitUntil: waitUntil,
	}
}

// Deadline implements context.Context.
func (c *Context) Deadline() (time.Time, bool) {
	return c.parent().Deadline()
}

// Done implements context.Context.
func (c *Context) Done() <-chan struct{} {
	return c.parent().Done()
}

// Err implements context.Context.
func (c *Context) Err() error {
	return c.parent().Err()
}

// Value returns a value stored with SetValue, falling back to the request context.
func (c *Context) Value(key any) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	return c.parent().Value(key)
}

// SetValue stores a request-scoped value visible to later hooks and handlers.
func (c *Context) SetValue(key, val any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
}

// WaitUntil schedules fn to run after the response may already be returned.
// Its failure is never visible to the caller.
func (c *Context) WaitUntil(fn func(ctx context.Context) error) {
	if fn == nil {
		return
	}
	if c.waitUntil != nil {
		c.waitUntil(fn)
		return
	}
	ctx := context.WithoutCancel(c.parent())
	go func() { _ = fn(ctx) }()
}

func (c *Context) parent() context.Context {
	if c.Req == nil || c.Req.raw == nil {
		return context.Background()
	}
	return c.Req.raw.Context()
}
