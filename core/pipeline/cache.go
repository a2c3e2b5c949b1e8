package pipeline

import (
	"context"

	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/logger"
)

// openCache returns the configured response cache or nil when caching is
// disabled, unsupported by the runtime, or failing.
func (p *Pipeline) openCache(ctx context.Context) host.Cache {
	if p.cfg.CacheName == "" || p.host == nil {
		return nil
	}
	gw := p.host.CacheGateway()
	if gw == nil {
		return nil
	}
	cache, err := gw.Open(ctx, p.cfg.CacheName)
	if err != nil {
		p.logger.WarnContext(ctx, "cache open failed",
			logger.Component("cache"), logger.Key("cache", p.cfg.CacheName), logger.Error(err))
		return nil
	}
	return cache
}

// lookup returns a cached response; errors count as misses.
func (p *Pipeline) lookup(ctx context.Context, cache host.Cache, req *host.Request) *host.Response {
	if cache == nil {
		return nil
	}
	resp, err := cache.Match(ctx, req)
	if err != nil {
		p.logger.WarnContext(ctx, "cache lookup failed",
			logger.Component("cache"), logger.Path(req.Path()), logger.Error(err))
		p.observer.CacheLookup(false)
		return nil
	}
	p.observer.CacheLookup(resp != nil)
	return resp
}

// store writes a copy of resp in the background. The caller never waits
// for the write and never sees its failure.
func (p *Pipeline) store(ctx context.Context, cache host.Cache, req *host.Request, resp *host.Response) {
	clone, err := resp.Clone()
	if err != nil {
		return
	}
	u := *req.URL
	key := host.NewRequest(ctx, req.Method, &u, nil, nil)
	p.background.Go(ctx, func(ctx context.Context) error {
		return cache.Put(ctx, key, clone)
	})
}
