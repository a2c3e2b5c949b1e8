// Package middleware provides ready-made lifecycle plugins: request IDs,
// access logging, rate limiting, CORS and security headers, and request body
// limits.
//
// Each constructor returns a plugin.Plugin that is registered under a path
// prefix:
//
//	app.Use("*", middleware.RequestID(), middleware.Logging(log))
//	app.Use("/api", middleware.RateLimit(middleware.RateLimitConfig{Limiter: lim}))
//
// Plugins that reject requests return a response.HTTPError, which the
// pipeline turns into a JSON error response.
package middleware

import "github.com/dmitrymomot/edgekit/core/host"

// SkipFunc reports whether a plugin should ignore req.
type SkipFunc func(req *host.Request) bool

func (f SkipFunc) skip(req *host.Request) bool {
	return f != nil && f(req)
}
