package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/edgekit/core/host"
)

// Connect creates a Redis client and pings it until it answers, retrying
// with exponential backoff up to cfg.RedisRetryAttempts times.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, ErrEmptyConnectionURL
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, errors.Join(ErrParseConnectionURL, err)
	}

	timeout := cfg.RedisTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := redis.NewClient(opts)
	interval := cfg.RedisRetryInterval
	attempts := max(cfg.RedisRetryAttempts, 1)
	for i := range attempts {
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(interval << i):
		}
	}
	_ = client.Close()
	return nil, errors.Join(ErrRedisNotReady, err)
}

// Redis is a response cache shared between instances.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewRedis creates a Redis cache gateway. Keys are prefixed with prefix.
func NewRedis(client redis.Cmdable, ttl time.Duration, prefix string) *Redis {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Redis{client: client, ttl: ttl, prefix: prefix}
}

// Open implements host.CacheGateway.
func (r *Redis) Open(_ context.Context, name string) (host.Cache, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return &redisCache{r: r, name: name}, nil
}

type redisCache struct {
	r    *Redis
	name string
}

func (c *redisCache) key(req *host.Request) string {
	return c.r.prefix + c.name + ":" + host.CacheKey(req)
}

func (c *redisCache) Match(ctx context.Context, req *host.Request) (*host.Response, error) {
	data, err := c.r.client.Get(ctx, c.key(req)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: redis get: %w", err)
	}
	return decodeEntry(data)
}

func (c *redisCache) Put(ctx context.Context, req *host.Request, resp *host.Response) error {
	data, err := encodeEntry(resp)
	if err != nil {
		return err
	}
	if err := c.r.client.Set(ctx, c.key(req), data, c.r.ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

// NewGateway builds the gateway cfg selects. It returns nil for
// BackendNone. The returned close func releases backend resources.
func NewGateway(ctx context.Context, cfg Config, opts ...MemoryOption) (host.CacheGateway, func() error, error) {
	switch cfg.Backend {
	case BackendNone:
		return nil, func() error { return nil }, nil
	case BackendMemory, "":
		m := NewMemory(append([]MemoryOption{WithTTL(cfg.TTL), WithMaxEntries(cfg.MaxEntries)}, opts...)...)
		return m, func() error { m.Stop(); return nil }, nil
	case BackendRedis:
		client, err := Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewRedis(client, cfg.TTL, "edgekit:"), client.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

// Ping returns a readiness check for gw. Only the Redis backend has a remote
// dependency; other gateways always report ready.
func Ping(gw host.CacheGateway) func(context.Context) error {
	return func(ctx context.Context) error {
		r, ok := gw.(*Redis)
		if !ok {
			return nil
		}
		if err := r.client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("cache: redis ping: %w", err)
		}
		return nil
	}
}
