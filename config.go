package edgekit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/dmitrymomot/edgekit/core/cache"
	"github.com/dmitrymomot/edgekit/core/logger"
	"github.com/dmitrymomot/edgekit/core/pipeline"
	"github.com/dmitrymomot/edgekit/core/server"
	"github.com/dmitrymomot/edgekit/pkg/ratelimiter"
)

// Config aggregates the configuration of every component.
type Config struct {
	Pipeline  pipeline.Config
	Server    server.Config
	Cache     cache.Config
	Logger    logger.Config
	RateLimit ratelimiter.Config

	// EnvPrefix selects the process variables exposed as ctx.Env.
	EnvPrefix string `env:"APP_ENV_PREFIX" envDefault:"APP_"`
	// MetricsPath serves Prometheus metrics; empty disables it.
	MetricsPath string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var result *multierror.Error

	add := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Server.Addr == "" {
		add("server address is required")
	}
	if c.Server.Runtime != server.RuntimeNetHTTP && c.Server.Runtime != server.RuntimeEdge {
		add("unknown server runtime %q", c.Server.Runtime)
	}
	if c.Server.ShutdownTimeout < 0 {
		add("negative shutdown timeout")
	}

	if c.Pipeline.BodyTimeout <= 0 {
		add("body read timeout must be positive")
	}
	if c.Pipeline.HeaderLimit <= 0 {
		add("header limit must be positive")
	}
	if c.Pipeline.CookieLimit <= 0 {
		add("cookie limit must be positive")
	}

	if !slices.Contains([]string{cache.BackendNone, cache.BackendMemory, cache.BackendRedis}, c.Cache.Backend) {
		add("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend != cache.BackendNone && c.Cache.TTL <= 0 {
		add("cache ttl must be positive")
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisURL == "" {
		add("redis url is required for the redis cache backend")
	}

	if !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, strings.ToLower(c.Logger.Level)) {
		add("unknown log level %q", c.Logger.Level)
	}
	if !slices.Contains([]string{"json", "text"}, strings.ToLower(c.Logger.Format)) {
		add("unknown log format %q", c.Logger.Format)
	}

	if c.RateLimit.Rate < 0 || c.RateLimit.Burst < 0 {
		add("rate limit must not be negative")
	}

	return result.ErrorOrNil()
}
