package middleware

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/logger"
	"github.com/dmitrymomot/edgekit/core/plugin"
)

type requestStartKey struct{}

// LoggingConfig configures the access log plugin.
type LoggingConfig struct {
	// Skip defines a function to skip the plugin for specific requests
	Skip SkipFunc

	// Logger is the slog logger to use (default: discard)
	Logger *slog.Logger

	// LogLevel for request logging (default: slog.LevelInfo)
	LogLevel slog.Level

	// LogHeaders adds request headers to the record (default: false)
	LogHeaders bool

	// SensitiveHeaders are redacted when LogHeaders is set
	SensitiveHeaders []string

	// SlowRequestThreshold logs slow requests at warning level (default: 5s)
	SlowRequestThreshold time.Duration

	// Component name for structured logging
	Component string
}

// Logging creates an access log plugin with the given logger.
func Logging(log *slog.Logger) plugin.Plugin {
	return LoggingWithConfig(LoggingConfig{Logger: log})
}

// LoggingWithConfig logs one record per handled request. Timing starts when
// the handler context is built. Failed requests are logged by the pipeline
// error translator instead.
func LoggingWithConfig(cfg LoggingConfig) plugin.Plugin {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.SensitiveHeaders == nil {
		cfg.SensitiveHeaders = []string{
			"authorization",
			"cookie",
			"cookies",
			"x-api-key",
			"x-auth-token",
			"x-csrf-token",
		}
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return plugin.Plugin{
		Name: "logging",
		BeforeHandling: func(ctx *handler.Context) error {
			ctx.SetValue(requestStartKey{}, time.Now())
			return nil
		},
		BeforeResponding: func(ctx *handler.Context) error {
			if cfg.Skip.skip(ctx.Req.Raw()) {
				return nil
			}

			attrs := []slog.Attr{
				logger.Component(cfg.Component),
				logger.Method(ctx.Req.Method()),
				logger.Path(ctx.Req.Path()),
				logger.StatusCode(ctx.Res.Code()),
				logger.ClientIP(ctx.Req.IP()),
				logger.UserAgent(ctx.Req.Header("user-agent")),
			}
			if id, ok := GetRequestID(ctx); ok {
				attrs = append(attrs, logger.RequestID(id))
			}

			level := cfg.LogLevel
			if start, ok := ctx.Value(requestStartKey{}).(time.Time); ok {
				d := time.Since(start)
				attrs = append(attrs, logger.Duration(d))
				if d >= cfg.SlowRequestThreshold {
					level = slog.LevelWarn
					attrs = append(attrs, slog.Bool("slow", true))
				}
			}

			if cfg.LogHeaders {
				attrs = append(attrs, headerAttrs(ctx.Req.Headers(), cfg.SensitiveHeaders))
			}

			cfg.Logger.LogAttrs(context.WithoutCancel(ctx), level, "request handled", attrs...)
			return nil
		},
	}
}

func headerAttrs(headers map[string]string, sensitive []string) slog.Attr {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		v := headers[k]
		if slices.ContainsFunc(sensitive, func(s string) bool { return strings.EqualFold(s, k) }) {
			v = "[REDACTED]"
		}
		attrs = append(attrs, slog.String(k, v))
	}
	return logger.Group("headers", attrs...)
}
