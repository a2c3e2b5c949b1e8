package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/karlseguin/ccache/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/edgekit/core/host"
)

// getsPerPromote moves an entry to the front of the LRU list after this
// many reads.
const getsPerPromote = 64

// itemsToPruneDiv prunes 1/16 of the entries when the cache is full.
const itemsToPruneDiv = 16

// Memory is an in-process LRU response cache.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	cache   *ccache.Cache
	entries *prometheus.GaugeVec
	lookups *prometheus.CounterVec
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	ttl        time.Duration
	maxEntries int64
	entries    *prometheus.GaugeVec
	lookups    *prometheus.CounterVec
}

// WithTTL sets how long entries stay fresh.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the number of cached responses.
func WithMaxEntries(n int64) MemoryOption {
	return func(c *memoryConfig) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithMetrics reports cached entries (labelled by cache name) and lookups
// (labelled by cache name and hit/miss).
func WithMetrics(entries *prometheus.GaugeVec, lookups *prometheus.CounterVec) MemoryOption {
	return func(c *memoryConfig) {
		c.entries = entries
		c.lookups = lookups
	}
}

// NewMemory creates an LRU cache gateway.
func NewMemory(opts ...MemoryOption) *Memory {
	cfg := memoryConfig{ttl: time.Minute, maxEntries: 10_000}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Memory{
		ttl:     cfg.ttl,
		entries: cfg.entries,
		lookups: cfg.lookups,
	}

	conf := ccache.Configure()
	conf.MaxSize(cfg.maxEntries)
	conf.ItemsToPrune(uint32(max(cfg.maxEntries/itemsToPruneDiv, 1)))
	conf.GetsPerPromote(getsPerPromote)
	conf.OnDelete(func(item *ccache.Item) {
		if m.entries != nil {
			if e, ok := item.Value().(*memoryEntry); ok && !e.replaced.Load() {
				m.entries.WithLabelValues(e.name).Dec()
			}
		}
	})
	m.cache = ccache.New(conf)
	return m
}

// memoryEntry is flagged replaced when Put overwrites its key, so its
// deletion is not counted twice.
type memoryEntry struct {
	name     string
	resp     *host.Response
	replaced atomic.Bool
}

// Open implements host.CacheGateway.
func (m *Memory) Open(_ context.Context, name string) (host.Cache, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return &memoryCache{name: name, m: m}, nil
}

// Stop releases the background worker of the cache.
func (m *Memory) Stop() {
	m.cache.Stop()
}

type memoryCache struct {
	name string
	m    *Memory
}

func (c *memoryCache) key(req *host.Request) string {
	return c.name + ":" + host.CacheKey(req)
}

// Match returns a copy of the cached response or nil.
func (c *memoryCache) Match(_ context.Context, req *host.Request) (*host.Response, error) {
	item := c.m.cache.Get(c.key(req))
	if item == nil || item.Expired() {
		c.observe("miss")
		return nil, nil
	}
	e, ok := item.Value().(*memoryEntry)
	if !ok {
		c.observe("miss")
		return nil, nil
	}
	c.observe("hit")
	return e.resp.Clone()
}

// Put stores a copy of resp.
func (c *memoryCache) Put(_ context.Context, req *host.Request, resp *host.Response) error {
	clone, err := resp.Clone()
	if err != nil {
		return err
	}
	key := c.key(req)

	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	if old := c.m.cache.Get(key); old != nil {
		if e, ok := old.Value().(*memoryEntry); ok {
			e.replaced.Store(true)
		}
	} else if c.m.entries != nil {
		c.m.entries.WithLabelValues(c.name).Inc()
	}
	c.m.cache.Set(key, &memoryEntry{name: c.name, resp: clone}, c.m.ttl)
	return nil
}

func (c *memoryCache) observe(result string) {
	if c.m.lookups != nil {
		c.m.lookups.WithLabelValues(c.name, result).Inc()
	}
}
