package edgekit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/host/edge"
	"github.com/dmitrymomot/edgekit/core/host/nethttp"
	"github.com/dmitrymomot/edgekit/core/logger"
	"github.com/dmitrymomot/edgekit/core/pipeline"
	"github.com/dmitrymomot/edgekit/core/plugin"
	"github.com/dmitrymomot/edgekit/core/router"
	"github.com/dmitrymomot/edgekit/core/server"
	"github.com/dmitrymomot/edgekit/core/validator"
	"github.com/dmitrymomot/edgekit/pkg/async"
)

// App owns the route table and plugin registry and dispatches requests
// through one pipeline per runtime. Routes may be added at any time;
// plugins must be registered before the first request.
type App struct {
	router     *router.Router
	plugins    *plugin.Registry
	background *async.Background
	logger     *slog.Logger

	netHost  *nethttp.Host
	edgeHost *edge.Host

	pipelineOpts []pipeline.Option

	once        sync.Once
	netPipe     *pipeline.Pipeline
	edgePipe    *pipeline.Pipeline
	httpHandler http.Handler
}

// New creates an App.
func New(opts ...Option) *App {
	a := &App{
		router:   router.New(),
		plugins:  plugin.NewRegistry(),
		logger:   logger.Discard(),
		netHost:  nethttp.New(),
		edgeHost: edge.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.background = async.NewBackground(async.WithLogger(a.logger))
	return a
}

func (a *App) build() {
	a.once.Do(func() {
		common := append([]pipeline.Option{
			pipeline.WithPlugins(a.plugins),
			pipeline.WithLogger(a.logger),
			pipeline.WithBackground(a.background),
		}, a.pipelineOpts...)

		a.netPipe = pipeline.New(a.router, append([]pipeline.Option{pipeline.WithHost(a.netHost)}, common...)...)
		a.edgePipe = pipeline.New(a.router, append([]pipeline.Option{pipeline.WithHost(a.edgeHost)}, common...)...)
		a.httpHandler = nethttp.Handler(a.netPipe)
	})
}

// Use registers plugins for paths under prefix. "*" or "" matches every
// path. Panics once the App has served a request.
func (a *App) Use(prefix string, plugins ...plugin.Plugin) {
	a.plugins.Use(prefix, plugins...)
}

// Handle registers handlers for method and pattern. Panics on an invalid
// or duplicate route.
func (a *App) Handle(method, pattern string, handlers ...handler.HandlerFunc) {
	a.handle(method, pattern, nil, handlers)
}

func (a *App) Get(pattern string, handlers ...handler.HandlerFunc) {
	a.Handle(http.MethodGet, pattern, handlers...)
}

func (a *App) Post(pattern string, handlers ...handler.HandlerFunc) {
	a.Handle(http.MethodPost, pattern, handlers...)
}

func (a *App) Put(pattern string, handlers ...handler.HandlerFunc) {
	a.Handle(http.MethodPut, pattern, handlers...)
}

func (a *App) Patch(pattern string, handlers ...handler.HandlerFunc) {
	a.Handle(http.MethodPatch, pattern, handlers...)
}

func (a *App) Delete(pattern string, handlers ...handler.HandlerFunc) {
	a.Handle(http.MethodDelete, pattern, handlers...)
}

func (a *App) Head(pattern string, handlers ...handler.HandlerFunc) {
	a.Handle(http.MethodHead, pattern, handlers...)
}

func (a *App) Options(pattern string, handlers ...handler.HandlerFunc) {
	a.Handle(http.MethodOptions, pattern, handlers...)
}

// Any registers handlers for every method.
func (a *App) Any(pattern string, handlers ...handler.HandlerFunc) {
	a.Handle(router.MethodAny, pattern, handlers...)
}

// With returns a builder whose routes are validated against schema.
func (a *App) With(schema *validator.Schema) *Routes {
	return &Routes{app: a, schema: schema}
}

// Routes returns the registered routes.
func (a *App) Routes() []router.Route {
	return a.router.Routes()
}

func (a *App) handle(method, pattern string, schema *validator.Schema, handlers []handler.HandlerFunc) {
	if err := a.router.Add(method, pattern, schema, handlers...); err != nil {
		panic(fmt.Sprintf("edgekit: %s %s: %v", method, pattern, err))
	}
}

// Serve implements host.Dispatcher on the net/http host.
func (a *App) Serve(ctx context.Context, req *host.Request) *host.Response {
	a.build()
	return a.netPipe.Serve(ctx, req)
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.build()
	a.httpHandler.ServeHTTP(w, r)
}

// FastHTTP returns the fasthttp handler running on the edge host.
func (a *App) FastHTTP() fasthttp.RequestHandler {
	a.build()
	return edge.Handler(a.edgePipe)
}

// Dispatcher returns the dispatcher for a server runtime.
func (a *App) Dispatcher(runtime string) (host.Dispatcher, error) {
	a.build()
	switch runtime {
	case server.RuntimeNetHTTP:
		return a.netPipe, nil
	case server.RuntimeEdge:
		return a.edgePipe, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidRuntime, runtime)
}

// Background returns the registrar running waitUntil tasks.
func (a *App) Background() *async.Background {
	return a.background
}

// Shutdown waits for pending waitUntil tasks and cache writes.
func (a *App) Shutdown(timeout time.Duration) error {
	return a.background.Wait(timeout)
}

// Routes registers routes sharing a validation schema.
type Routes struct {
	app    *App
	schema *validator.Schema
}

func (r *Routes) Handle(method, pattern string, handlers ...handler.HandlerFunc) *Routes {
	r.app.handle(method, pattern, r.schema, handlers)
	return r
}

func (r *Routes) Get(pattern string, handlers ...handler.HandlerFunc) *Routes {
	return r.Handle(http.MethodGet, pattern, handlers...)
}

func (r *Routes) Post(pattern string, handlers ...handler.HandlerFunc) *Routes {
	return r.Handle(http.MethodPost, pattern, handlers...)
}

func (r *Routes) Put(pattern string, handlers ...handler.HandlerFunc) *Routes {
	return r.Handle(http.MethodPut, pattern, handlers...)
}

func (r *Routes) Patch(pattern string, handlers ...handler.HandlerFunc) *Routes {
	return r.Handle(http.MethodPatch, pattern, handlers...)
}

func (r *Routes) Delete(pattern string, handlers ...handler.HandlerFunc) *Routes {
	return r.Handle(http.MethodDelete, pattern, handlers...)
}
