package pipeline

import (
	"log/slog"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/plugin"
	"github.com/dmitrymomot/edgekit/core/validator"
	"github.com/dmitrymomot/edgekit/pkg/async"
)

// ErrorHandler renders unstructured failures. Returning nil falls back to
// the default 500 response. ctx is nil when the failure happened before the
// context was built.
type ErrorHandler func(req *host.Request, ctx *handler.Context, err error) *host.Response

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConfig replaces the configuration. Zero limits keep their defaults.
func WithConfig(cfg Config) Option {
	return func(p *Pipeline) {
		def := DefaultConfig()
		if cfg.BodyTimeout <= 0 {
			cfg.BodyTimeout = def.BodyTimeout
		}
		if cfg.HeaderLimit <= 0 {
			cfg.HeaderLimit = def.HeaderLimit
		}
		if cfg.CookieLimit <= 0 {
			cfg.CookieLimit = def.CookieLimit
		}
		p.cfg = cfg
	}
}

// WithHost sets the hosting runtime.
func WithHost(h host.Host) Option {
	return func(p *Pipeline) {
		p.host = h
	}
}

// WithPlugins sets the hook registry.
func WithPlugins(reg *plugin.Registry) Option {
	return func(p *Pipeline) {
		if reg != nil {
			p.plugins = reg
		}
	}
}

// WithValidator enables the validation stage. Without a validator route
// schemas are ignored.
func WithValidator(v validator.Validator) Option {
	return func(p *Pipeline) {
		p.validator = v
	}
}

// WithCORS sets the allowed origin.
func WithCORS(origin string) Option {
	return func(p *Pipeline) {
		p.cfg.CORSOrigin = origin
	}
}

// WithCache enables the GET response cache with the given cache name.
func WithCache(name string) Option {
	return func(p *Pipeline) {
		p.cfg.CacheName = name
	}
}

// WithErrorHandler sets the renderer for unstructured failures.
func WithErrorHandler(h ErrorHandler) Option {
	return func(p *Pipeline) {
		p.errorHandler = h
	}
}

// WithNotFound sets the handler for unmatched routes.
func WithNotFound(h handler.HandlerFunc) Option {
	return func(p *Pipeline) {
		p.notFound = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithBackground sets the registrar running waitUntil tasks and cache writes.
func WithBackground(bg *async.Background) Option {
	return func(p *Pipeline) {
		if bg != nil {
			p.background = bg
		}
	}
}

// WithObserver sets the metrics sink.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.observer = o
		}
	}
}
