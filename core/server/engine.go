package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/host/edge"
	"github.com/dmitrymomot/edgekit/core/host/nethttp"
)

type netHTTPEngine struct {
	srv *http.Server
}

func newNetHTTPEngine(s *Server, d host.Dispatcher) *netHTTPEngine {
	var handler http.Handler = nethttp.Handler(d)
	if len(s.mounts) > 0 {
		mux := http.NewServeMux()
		for path, h := range s.mounts {
			mux.Handle(path, h)
		}
		dispatch := handler
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := s.mounts[r.URL.Path]; ok {
				mux.ServeHTTP(w, r)
				return
			}
			dispatch.ServeHTTP(w, r)
		})
	}

	return &netHTTPEngine{srv: &http.Server{
		Handler:        handler,
		ReadTimeout:    s.readTimeout,
		WriteTimeout:   s.writeTimeout,
		IdleTimeout:    s.idleTimeout,
		MaxHeaderBytes: s.maxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}}
}

func (e *netHTTPEngine) serve(ln net.Listener) error {
	if err := e.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (e *netHTTPEngine) stop(ctx context.Context) error {
	return e.srv.Shutdown(ctx)
}

type edgeEngine struct {
	srv *fasthttp.Server
}

func newEdgeEngine(s *Server, d host.Dispatcher) *edgeEngine {
	handler := edge.Handler(d)
	if len(s.mounts) > 0 {
		mounts := make(map[string]fasthttp.RequestHandler, len(s.mounts))
		for path, h := range s.mounts {
			mounts[path] = fasthttpadaptor.NewFastHTTPHandler(h)
		}
		dispatch := handler
		handler = func(fctx *fasthttp.RequestCtx) {
			if h, ok := mounts[string(fctx.Path())]; ok {
				h(fctx)
				return
			}
			dispatch(fctx)
		}
	}

	return &edgeEngine{srv: &fasthttp.Server{
		Handler:      handler,
		Name:         "edgekit",
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  s.idleTimeout,
		Logger:       fasthttpLogger{s.logger},
	}}
}

func (e *edgeEngine) serve(ln net.Listener) error {
	return e.srv.Serve(ln)
}

func (e *edgeEngine) stop(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- e.srv.Shutdown() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fasthttpLogger routes fasthttp's Printf logging into slog.
type fasthttpLogger struct {
	log *slog.Logger
}

func (l fasthttpLogger) Printf(format string, args ...any) {
	l.log.Warn(fmt.Sprintf(format, args...), slog.String("runtime", RuntimeEdge))
}
