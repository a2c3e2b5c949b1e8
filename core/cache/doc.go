// Package cache implements host.CacheGateway backends for the GET response
// cache: an in-process LRU built on ccache and a Redis store shared between
// instances.
//
//	gw := cache.NewMemory(cache.WithMaxEntries(10_000), cache.WithTTL(time.Minute))
//	h := edge.New(edge.WithCacheGateway(gw))
//
// Both backends store buffered responses only. Entries are namespaced by
// cache name and keyed by host.CacheKey.
package cache
