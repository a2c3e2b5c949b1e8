package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/plugin"
)

// DefaultRequestIDHeader is the header carrying the request ID.
const DefaultRequestIDHeader = "X-Request-ID"

// requestIDContextKey is used as a key for storing request ID in the context.
type requestIDContextKey struct{}

// RequestIDConfig configures the request ID plugin.
type RequestIDConfig struct {
	// Skip defines a function to skip the plugin for specific requests
	Skip SkipFunc
	// Generator creates new request IDs (default: UUID v4)
	Generator func() string
	// HeaderName specifies the header name for the request ID (default: "X-Request-ID")
	HeaderName string
	// UseExisting keeps a request ID sent by the client
	UseExisting bool
}

// RequestID creates a request ID plugin with default configuration.
func RequestID() plugin.Plugin {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig assigns an ID to each request before validation so the
// ID is visible in request headers, the context and the response headers.
func RequestIDWithConfig(cfg RequestIDConfig) plugin.Plugin {
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultRequestIDHeader
	}
	if cfg.Generator == nil {
		cfg.Generator = func() string {
			return uuid.New().String()
		}
	}

	return plugin.Plugin{
		Name: "requestid",
		BeforeParsing: func(_ context.Context, req *host.Request) error {
			if cfg.Skip.skip(req) {
				return nil
			}
			var id string
			if cfg.UseExisting {
				id = req.Header(cfg.HeaderName)
			}
			if id == "" {
				id = cfg.Generator()
			}
			req.SetHeader(cfg.HeaderName, id)
			return nil
		},
		BeforeHandling: func(ctx *handler.Context) error {
			if cfg.Skip.skip(ctx.Req.Raw()) {
				return nil
			}
			id := ctx.Req.Raw().Header(cfg.HeaderName)
			if id == "" {
				return nil
			}
			ctx.SetValue(requestIDContextKey{}, id)
			ctx.Res.Header(cfg.HeaderName, id)
			return nil
		},
	}
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey{}).(string)
	return id, ok
}
