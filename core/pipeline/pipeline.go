package pipeline

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/logger"
	"github.com/dmitrymomot/edgekit/core/plugin"
	"github.com/dmitrymomot/edgekit/core/response"
	"github.com/dmitrymomot/edgekit/core/router"
	"github.com/dmitrymomot/edgekit/core/validator"
	"github.com/dmitrymomot/edgekit/pkg/async"
)

// Matcher resolves a method and path to a route.
type Matcher interface {
	Match(method, path string) (*router.Match, bool)
}

// Pipeline turns runtime-neutral requests into responses. It is safe for
// concurrent use; per-request state never leaves a single Serve call.
type Pipeline struct {
	routes       Matcher
	plugins      *plugin.Registry
	host         host.Host
	validator    validator.Validator
	cfg          Config
	errorHandler ErrorHandler
	notFound     handler.HandlerFunc
	background   *async.Background
	logger       *slog.Logger
	observer     Observer
}

// New creates a pipeline dispatching to routes.
func New(routes Matcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		routes:   routes,
		plugins:  plugin.NewRegistry(),
		cfg:      DefaultConfig(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.background == nil {
		p.background = async.NewBackground(async.WithLogger(p.logger))
	}
	return p
}

// Background returns the registrar of waitUntil tasks.
func (p *Pipeline) Background() *async.Background {
	return p.background
}

// Serve dispatches req. It always returns a response: every failure is
// translated into an HTTP error response.
func (p *Pipeline) Serve(ctx context.Context, req *host.Request) *host.Response {
	start := time.Now()
	p.plugins.Freeze()

	if req == nil {
		return response.ErrorResponse(response.ErrBadRequest)
	}

	resp := p.serve(ctx, req)
	p.observer.ObserveDispatch(req.Method, resp.Status, time.Since(start))
	return resp
}

func (p *Pipeline) serve(ctx context.Context, req *host.Request) *host.Response {
	var cache host.Cache
	if req.Method == http.MethodGet {
		cache = p.openCache(ctx)
		if cached := p.lookup(ctx, cache, req); cached != nil {
			return cached
		}
	}

	hctx, resp, stage, err := p.dispatch(ctx, req)
	if err != nil {
		p.observer.StageFailed(stage)
		return p.translate(req, hctx, stage, err)
	}

	if cache != nil && resp.OK() && !resp.Streaming() {
		p.store(ctx, cache, req, resp)
	}
	return resp
}

// dispatch runs every stage after the cache lookup. It reports the stage a
// failure happened in; panics are recovered into *async.PanicError.
func (p *Pipeline) dispatch(ctx context.Context, req *host.Request) (hctx *handler.Context, resp *host.Response, stage string, err error) {
	stage = StagePreflight
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = async.NewPanicError(r)
		}
	}()

	if isPreflight(req) {
		return nil, p.preflight(req), stage, nil
	}

	stage = StageRouting
	match, ok := p.routes.Match(req.Method, req.Path())
	if !ok {
		if p.notFound == nil {
			return nil, nil, stage, response.ErrNotFound
		}
		hctx = p.newContext(ctx, req, nil)
		resp, stage, err = p.runNotFound(hctx)
		return hctx, resp, stage, err
	}

	stage = StageBeforeParsing
	if err := p.plugins.BeforeParsing(ctx, req); err != nil {
		return nil, nil, stage, err
	}

	stage = StageValidation
	var parsed *handler.Parsed
	if p.validator != nil {
		v, err := p.validate(ctx, req, match.Route.Schema)
		if err != nil {
			return nil, nil, stage, err
		}
		parsed = &v
	}

	hctx = p.newContext(ctx, req, match.Params, parsedOption(parsed)...)

	stage = StageBeforeHandling
	if err := p.plugins.BeforeHandling(hctx); err != nil {
		return hctx, nil, stage, err
	}

	stage = StageHandler
	if err := runChain(hctx, match.Route.Handlers); err != nil {
		return hctx, nil, stage, err
	}

	stage = StageBeforeResponding
	if err := p.plugins.BeforeResponding(hctx); err != nil {
		return hctx, nil, stage, err
	}

	stage = StageFormatting
	resp, err = response.Format(hctx.Res)
	if err != nil {
		return hctx, nil, stage, err
	}
	p.allowOrigin(resp)
	return hctx, resp, stage, nil
}

// runChain invokes handlers in order. It stops at the first non-empty
// result, which becomes the body, or as soon as a handler set a body
// through the response state.
func runChain(ctx *handler.Context, handlers []handler.HandlerFunc) error {
	for _, h := range handlers {
		rev := ctx.Res.Revision()
		result, err := h(ctx)
		if err != nil {
			return err
		}
		if !handler.IsEmpty(result) {
			ctx.Res.SetResult(result)
			return nil
		}
		if ctx.Res.Revision() != rev {
			return nil
		}
	}
	return nil
}

func (p *Pipeline) runNotFound(ctx *handler.Context) (*host.Response, string, error) {
	if err := runChain(ctx, []handler.HandlerFunc{p.notFound}); err != nil {
		return nil, StageHandler, err
	}
	resp, err := response.Format(ctx.Res)
	if err != nil {
		return nil, StageFormatting, err
	}
	return resp, StageFormatting, nil
}

func (p *Pipeline) newContext(ctx context.Context, req *host.Request, params map[string]string, extra ...handler.RequestOption) *handler.Context {
	opts := []handler.RequestOption{
		handler.WithHost(p.host),
		handler.WithParams(params),
		handler.WithBodyTimeout(p.cfg.BodyTimeout),
		handler.WithLimits(p.cfg.HeaderLimit, p.cfg.CookieLimit),
	}
	opts = append(opts, extra...)

	var env map[string]string
	if p.host != nil {
		env = p.host.Env()
	}
	return handler.NewContext(handler.NewRequest(req, opts...), env, func(fn func(context.Context) error) {
		p.background.Go(ctx, fn)
	})
}

func parsedOption(parsed *handler.Parsed) []handler.RequestOption {
	if parsed == nil {
		return nil
	}
	return []handler.RequestOption{handler.WithParsed(*parsed)}
}

func (p *Pipeline) allowOrigin(resp *host.Response) {
	if p.cfg.CORSOrigin == "" || resp.Header.Get("Access-Control-Allow-Origin") != "" {
		return
	}
	resp.Header.Set("Access-Control-Allow-Origin", p.cfg.CORSOrigin)
}

func (p *Pipeline) logAttrs(req *host.Request, stage string) []any {
	attrs := []any{
		logger.Method(req.Method),
		logger.Path(req.Path()),
		logger.Stage(stage),
	}
	if p.host != nil {
		attrs = append(attrs, logger.Runtime(p.host.Name()))
	}
	return attrs
}
