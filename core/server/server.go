package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/edgekit/core/host"
)

// Server runs a dispatcher on the selected runtime with graceful shutdown.
// Safe for concurrent use.
type Server struct {
	mu             sync.Mutex
	addr           string
	runtime        string
	logger         *slog.Logger
	shutdown       time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
	maxHeaderBytes int
	tlsConfig      *tls.Config
	mounts         map[string]http.Handler
	engine         engine
	listener       net.Listener
	running        bool
}

// engine is a runtime-specific HTTP server.
type engine interface {
	serve(ln net.Listener) error
	stop(ctx context.Context) error
}

// New returns a Server bound to addr. Without options it uses the net/http
// runtime and discards its own logs.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		addr:           addr,
		runtime:        RuntimeNetHTTP,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		shutdown:       DefaultShutdownTimeout,
		readTimeout:    DefaultReadTimeout,
		writeTimeout:   DefaultWriteTimeout,
		idleTimeout:    DefaultIdleTimeout,
		maxHeaderBytes: DefaultMaxHeaderBytes,
		mounts:         make(map[string]http.Handler),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Mount serves h on the exact path instead of the dispatcher, for endpoints
// like /metrics. Must be called before Start.
func (s *Server) Mount(path string, h http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounts[path] = h
}

// Runtime returns the selected runtime name.
func (s *Server) Runtime() string {
	return s.runtime
}

// Addr returns the bound listener address while running, or the configured
// address otherwise.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start binds the listener and serves d until ctx is done or the engine
// fails. It does not shut the engine down on ctx; Stop does that.
func (s *Server) Start(ctx context.Context, d host.Dispatcher) error {
	if d == nil {
		return ErrNilDispatcher
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrServerAlreadyRunning
	}

	eng, err := s.newEngine(d)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}

	s.engine = eng
	s.listener = ln
	s.running = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "listening",
			slog.String("addr", ln.Addr().String()),
			slog.String("runtime", s.runtime),
			slog.Bool("tls", s.tlsConfig != nil),
		)
		if err := eng.serve(ln); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.mu.Lock()
		s.running = false
		s.listener = nil
		s.mu.Unlock()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains in-flight requests for at most the shutdown timeout.
// Calling it on an idle server is a no-op.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.engine == nil {
		return nil
	}

	s.logger.Info("draining connections", slog.Duration("timeout", s.shutdown))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()

	err := s.engine.stop(shutdownCtx)
	s.running = false
	s.listener = nil

	if err != nil {
		s.logger.Error("shutdown failed", slog.Any("error", err))
		return err
	}

	s.logger.Info("server stopped", slog.String("runtime", s.runtime))
	return nil
}

// Run adapts Start and Stop to errgroup.Group.Go: the returned func serves
// until ctx is done, then stops the engine and reports nil.
func (s *Server) Run(ctx context.Context, d host.Dispatcher) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Start(ctx, d)
		}()

		select {
		case <-ctx.Done():
			if stopErr := s.Stop(); stopErr != nil {
				s.logger.Error("stop after cancellation", slog.Any("error", stopErr))
			}
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

// Run serves d on addr with the net/http runtime and default settings.
func Run(ctx context.Context, addr string, d host.Dispatcher) error {
	return New(addr).Run(ctx, d)()
}

func (s *Server) newEngine(d host.Dispatcher) (engine, error) {
	switch s.runtime {
	case RuntimeNetHTTP:
		return newNetHTTPEngine(s, d), nil
	case RuntimeEdge:
		return newEdgeEngine(s, d), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRuntime, s.runtime)
}
