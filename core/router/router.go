package router

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/validator"
)

// Route is a registered endpoint: an optional schema followed by the
// handler chain.
type Route struct {
	Method   string
	Pattern  string
	Schema   *validator.Schema
	Handlers []handler.HandlerFunc

	paramKeys []string
}

// Match is the result of resolving a method and path.
type Match struct {
	Params map[string]string
	Route  *Route
}

// Router resolves method and path pairs to routes. Routes are added during
// configuration; Match is safe for concurrent use.
type Router struct {
	mu     sync.RWMutex
	tree   *node
	routes []*Route
}

// New creates an empty router.
func New() *Router {
	return &Router{tree: &node{}}
}

// Add registers handlers for method and pattern. Patterns support
// {name} params, {name:regexp} params and a trailing * catch-all exposed as
// the "*" param. MethodAny registers the route for every method.
func (r *Router) Add(method, pattern string, schema *validator.Schema, handlers ...handler.HandlerFunc) error {
	mt, ok := parseMethod(method)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidMethod, method)
	}
	if len(handlers) == 0 || slices.ContainsFunc(handlers, func(h handler.HandlerFunc) bool { return h == nil }) {
		return fmt.Errorf("%w: %s %s", ErrNoHandlers, method, pattern)
	}

	segs, keys, err := parsePattern(pattern)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	leaf := r.tree.insert(segs)

	var dup bool
	mt.each(func(bit methodTyp) {
		if leaf.endpoints[bit] != nil {
			dup = true
		}
	})
	if dup {
		return fmt.Errorf("%w: %s %s", ErrDuplicateRoute, strings.ToUpper(method), pattern)
	}

	mt.each(func(bit methodTyp) {
		rt := &Route{
			Method:    bit.String(),
			Pattern:   pattern,
			Schema:    schema,
			Handlers:  slices.Clone(handlers),
			paramKeys: keys,
		}
		leaf.endpoints[bit] = rt
		r.routes = append(r.routes, rt)
	})
	return nil
}

// Match resolves method and path. A path that exists under another method
// does not match.
func (r *Router) Match(method, path string) (*Match, bool) {
	mt, ok := parseMethod(method)
	if !ok || mt == mALL {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, values := r.tree.find(mt, splitPath(path), nil)
	if rt == nil {
		return nil, false
	}

	params := make(map[string]string, len(rt.paramKeys))
	for i, key := range rt.paramKeys {
		if i < len(values) {
			params[key] = values[i]
		}
	}
	return &Match{Params: params, Route: rt}, true
}

// Routes returns every registered route in registration order.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Route, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, *rt)
	}
	return out
}
