// Package ratelimiter provides per-key token bucket rate limiting.
//
// Each key (usually a client IP) gets its own golang.org/x/time/rate limiter.
// Limiters live in a bounded ccache LRU so idle keys are evicted instead of
// growing memory without bound.
//
//	lim, err := ratelimiter.New(ratelimiter.Config{Rate: 10, Burst: 20})
//	if err != nil {
//		return err
//	}
//	defer lim.Stop()
//
//	if res := lim.Allow(ip); !res.Allowed {
//		// reject, retry after res.RetryAfter
//	}
package ratelimiter
