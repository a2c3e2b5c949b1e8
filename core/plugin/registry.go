package plugin

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/host"
)

// Wildcard matches every path.
const Wildcard = "*"

// ParseHook runs before validation with the raw request.
type ParseHook func(ctx context.Context, req *host.Request) error

// Hook runs with the dispatch context.
type Hook func(ctx *handler.Context) error

// Plugin groups the hooks of one concern. Nil hooks are skipped.
type Plugin struct {
	Name             string
	BeforeParsing    ParseHook
	BeforeHandling   Hook
	BeforeResponding Hook
}

// stage keeps hooks per prefix with prefixes in first-registration order.
type stage[T any] struct {
	prefixes []string
	hooks    map[string][]T
}

func (s *stage[T]) add(prefix string, hook T) {
	if s.hooks == nil {
		s.hooks = make(map[string][]T)
	}
	if _, ok := s.hooks[prefix]; !ok {
		s.prefixes = append(s.prefixes, prefix)
	}
	s.hooks[prefix] = append(s.hooks[prefix], hook)
}

func (s *stage[T]) each(path string, fn func(T) error) error {
	for _, prefix := range s.prefixes {
		if !Matches(prefix, path) {
			continue
		}
		for _, hook := range s.hooks[prefix] {
			if err := fn(hook); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *stage[T]) len() int {
	n := 0
	for _, hooks := range s.hooks {
		n += len(hooks)
	}
	return n
}

// Registry maps lifecycle stages to prefix-scoped hooks.
// It is written during configuration and read-only once frozen.
type Registry struct {
	mu     sync.Mutex
	frozen atomic.Bool
	names  []string

	parsing    stage[ParseHook]
	handling   stage[Hook]
	responding stage[Hook]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Use registers plugins under prefix. An empty prefix means Wildcard.
// It panics once the registry is frozen.
func (r *Registry) Use(prefix string, plugins ...Plugin) {
	if prefix == "" {
		prefix = Wildcard
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		panic(ErrFrozen)
	}

	for _, p := range plugins {
		if p.Name != "" {
			r.names = append(r.names, p.Name)
		}
		if p.BeforeParsing != nil {
			r.parsing.add(prefix, p.BeforeParsing)
		}
		if p.BeforeHandling != nil {
			r.handling.add(prefix, p.BeforeHandling)
		}
		if p.BeforeResponding != nil {
			r.responding.add(prefix, p.BeforeResponding)
		}
	}
}

// Freeze makes the registry read-only. It is idempotent.
func (r *Registry) Freeze() {
	if r.frozen.Load() {
		return
	}
	r.mu.Lock()
	r.frozen.Store(true)
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Names returns the names of the registered plugins in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

// Len returns the number of hooks registered across all stages.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.parsing.len() + r.handling.len() + r.responding.len()
}

// BeforeParsing runs the matching parse hooks in order and stops at the
// first failure.
func (r *Registry) BeforeParsing(ctx context.Context, req *host.Request) error {
	return r.parsing.each(req.Path(), func(h ParseHook) error {
		return h(ctx, req)
	})
}

// BeforeHandling runs the matching pre-handler hooks in order.
func (r *Registry) BeforeHandling(ctx *handler.Context) error {
	return r.handling.each(ctx.Req.Path(), func(h Hook) error {
		return h(ctx)
	})
}

// BeforeResponding runs the matching pre-formatting hooks in order.
func (r *Registry) BeforeResponding(ctx *handler.Context) error {
	return r.responding.each(ctx.Req.Path(), func(h Hook) error {
		return h(ctx)
	})
}

// Matches reports whether a hook registered under prefix applies to path.
func Matches(prefix, path string) bool {
	return prefix == Wildcard || prefix == path || strings.HasPrefix(path, prefix)
}
