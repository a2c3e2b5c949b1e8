// Command edgekit runs an example application on the runtime selected by
// SERVER_RUNTIME, with Prometheus metrics on METRICS_PATH.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/edgekit"
	"github.com/dmitrymomot/edgekit/core/cache"
	"github.com/dmitrymomot/edgekit/core/config"
	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/health"
	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/host/edge"
	"github.com/dmitrymomot/edgekit/core/host/nethttp"
	"github.com/dmitrymomot/edgekit/core/logger"
	"github.com/dmitrymomot/edgekit/core/metrics"
	"github.com/dmitrymomot/edgekit/core/server"
	"github.com/dmitrymomot/edgekit/core/validator"
	"github.com/dmitrymomot/edgekit/middleware"
	"github.com/dmitrymomot/edgekit/pkg/ratelimiter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var cfg edgekit.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(logger.WithConfig(cfg.Logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("edgekit")
	m.MustRegister(reg)

	gw, closeCache, err := cache.NewGateway(ctx, cfg.Cache, cache.WithMetrics(m.CachedEntries, m.CacheRequests))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeCache(); err != nil {
			log.Warn("failed to close cache", logger.Error(err))
		}
	}()

	env := host.Environ(cfg.EnvPrefix)
	edgeOpts := []edge.Option{edge.WithEnv(env)}
	if gw != nil {
		edgeOpts = append(edgeOpts, edge.WithCacheGateway(gw))
	}

	app := edgekit.New(
		edgekit.WithLogger(log),
		edgekit.WithPipelineConfig(cfg.Pipeline),
		edgekit.WithValidator(validator.New()),
		edgekit.WithObserver(m),
		edgekit.WithNetHTTPHost(nethttp.New(nethttp.WithEnv(env))),
		edgekit.WithEdgeHost(edge.New(edgeOpts...)),
	)

	app.Use("*",
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.SecurityHeaders(),
		middleware.BodyLimit(middleware.DefaultBodyLimit),
	)

	if cfg.RateLimit.Rate > 0 && cfg.RateLimit.Burst > 0 {
		lim, err := ratelimiter.New(cfg.RateLimit)
		if err != nil {
			return err
		}
		defer lim.Stop()
		app.Use("/api", middleware.RateLimit(middleware.RateLimitConfig{Limiter: lim, SetHeaders: true}))
	}

	registerRoutes(app, log, gw)

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
	if err != nil {
		return err
	}
	if cfg.MetricsPath != "" {
		srv.Mount(cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	d, err := app.Dispatcher(srv.Runtime())
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Run(ctx, d))
	err = g.Wait()

	if werr := app.Shutdown(cfg.Server.ShutdownTimeout); werr != nil {
		log.Warn("background tasks did not finish", logger.Error(werr), slog.Int("pending", app.Background().Pending()))
	}
	return err
}

func registerRoutes(app *edgekit.App, log *slog.Logger, gw host.CacheGateway) {
	app.Get("/health/live", health.Liveness)
	app.Get("/health/ready", health.Readiness(log, cache.Ping(gw)))
	app.Get("/ping", health.NoContent)

	app.With(&validator.Schema{Query: validator.Rules{"lang": "in:en,de,fr"}}).
		Get("/api/hello/{name}", func(ctx *handler.Context) (any, error) {
			greeting := "Hello"
			switch ctx.Req.Query()["lang"] {
			case "de":
				greeting = "Hallo"
			case "fr":
				greeting = "Bonjour"
			}
			ctx.Res.Header("Cache-Control", "public, max-age=60")
			return greeting + ", " + ctx.Req.Param("name"), nil
		})

	app.With(&validator.Schema{Body: validator.Rules{"message": "required;max:1024"}}).
		Post("/api/echo", func(ctx *handler.Context) (any, error) {
			body, _ := ctx.Req.Body().(map[string]any)
			ctx.Res.Status(http.StatusCreated)
			return map[string]any{"message": body["message"], "geo": ctx.Req.Geo()}, nil
		})
}
