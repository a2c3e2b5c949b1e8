package edgekit

import (
	"log/slog"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/host/edge"
	"github.com/dmitrymomot/edgekit/core/host/nethttp"
	"github.com/dmitrymomot/edgekit/core/pipeline"
	"github.com/dmitrymomot/edgekit/core/validator"
)

// Option configures an App.
type Option func(*App)

// WithPipelineConfig sets limits, the CORS origin and the cache name.
func WithPipelineConfig(cfg pipeline.Config) Option {
	return func(a *App) {
		a.pipelineOpts = append(a.pipelineOpts, pipeline.WithConfig(cfg))
	}
}

// WithLogger sets the logger used by the pipeline and background tasks.
func WithLogger(log *slog.Logger) Option {
	return func(a *App) {
		if log != nil {
			a.logger = log
		}
	}
}

// WithValidator enables route schemas.
func WithValidator(v validator.Validator) Option {
	return func(a *App) {
		a.pipelineOpts = append(a.pipelineOpts, pipeline.WithValidator(v))
	}
}

// WithCORS allows origin on preflight and successful responses.
func WithCORS(origin string) Option {
	return func(a *App) {
		a.pipelineOpts = append(a.pipelineOpts, pipeline.WithCORS(origin))
	}
}

// WithCache enables the GET response cache under name. The runtime must
// provide a cache gateway.
func WithCache(name string) Option {
	return func(a *App) {
		a.pipelineOpts = append(a.pipelineOpts, pipeline.WithCache(name))
	}
}

// WithErrorHandler renders unstructured failures.
func WithErrorHandler(h pipeline.ErrorHandler) Option {
	return func(a *App) {
		a.pipelineOpts = append(a.pipelineOpts, pipeline.WithErrorHandler(h))
	}
}

// WithNotFound handles requests that match no route.
func WithNotFound(h handler.HandlerFunc) Option {
	return func(a *App) {
		a.pipelineOpts = append(a.pipelineOpts, pipeline.WithNotFound(h))
	}
}

// WithObserver reports dispatch metrics.
func WithObserver(o pipeline.Observer) Option {
	return func(a *App) {
		a.pipelineOpts = append(a.pipelineOpts, pipeline.WithObserver(o))
	}
}

// WithNetHTTPHost replaces the host used by ServeHTTP.
func WithNetHTTPHost(h *nethttp.Host) Option {
	return func(a *App) {
		if h != nil {
			a.netHost = h
		}
	}
}

// WithEdgeHost replaces the host used by FastHTTP.
func WithEdgeHost(h *edge.Host) Option {
	return func(a *App) {
		if h != nil {
			a.edgeHost = h
		}
	}
}
