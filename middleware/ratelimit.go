package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/plugin"
	"github.com/dmitrymomot/edgekit/core/response"
	"github.com/dmitrymomot/edgekit/pkg/clientip"
	"github.com/dmitrymomot/edgekit/pkg/ratelimiter"
)

// RateLimitConfig configures the rate limiting plugin.
type RateLimitConfig struct {
	// Skip defines a function to skip the plugin for specific requests
	Skip SkipFunc
	// Limiter is the rate limiting implementation to use
	Limiter *ratelimiter.Limiter
	// KeyExtractor defines how to extract the rate limiting key (default: client IP)
	KeyExtractor func(req *host.Request) string
	// SetHeaders adds X-RateLimit-* headers to successful responses
	SetHeaders bool
}

// RateLimit rejects requests over the limit with 429 before the body is
// parsed. Panics if no limiter is provided.
func RateLimit(cfg RateLimitConfig) plugin.Plugin {
	if cfg.Limiter == nil {
		panic("ratelimit plugin: limiter is required")
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = clientip.GetIP
	}

	p := plugin.Plugin{
		Name: "ratelimit",
		BeforeParsing: func(_ context.Context, req *host.Request) error {
			if cfg.Skip.skip(req) {
				return nil
			}
			res := cfg.Limiter.Allow(cfg.KeyExtractor(req))
			if res.Allowed {
				return nil
			}
			msg := "Too Many Requests"
			if res.RetryAfter > 0 {
				msg = fmt.Sprintf("Too Many Requests, retry in %.0fs", math.Ceil(res.RetryAfter.Seconds()))
			}
			return response.ErrTooManyRequests.WithMessage(msg)
		},
	}

	if cfg.SetHeaders {
		p.BeforeHandling = func(ctx *handler.Context) error {
			req := ctx.Req.Raw()
			if cfg.Skip.skip(req) {
				return nil
			}
			st := cfg.Limiter.Status(cfg.KeyExtractor(req))
			ctx.Res.Header("X-RateLimit-Limit", strconv.Itoa(st.Limit))
			ctx.Res.Header("X-RateLimit-Remaining", strconv.Itoa(st.Remaining))
			return nil
		}
	}

	return p
}
