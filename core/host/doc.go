// Package host defines the runtime-neutral request and response primitives the
// dispatch pipeline works with, plus the capability interface each hosting
// runtime implements.
//
// Two runtimes are supported out of the box:
//
//	github.com/dmitrymomot/edgekit/core/host/nethttp - general-purpose server runtime (net/http)
//	github.com/dmitrymomot/edgekit/core/host/edge    - edge/worker runtime (fasthttp) with a response cache gateway
//
// A Request body is read at most once from the underlying source and buffered,
// so every body accessor (buffer, text, JSON, form data, stream) can be called
// repeatedly regardless of whether the runtime hands over a read-once stream or
// an already buffered payload.
//
// The runtime is selected once at startup and injected into the pipeline:
//
//	h := nethttp.New(nethttp.WithEnviron("APP_"))
//	d := pipeline.New(router, plugins, pipeline.WithHost(h))
package host
