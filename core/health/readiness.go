package health

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/logger"
	"github.com/dmitrymomot/edgekit/core/response"
)

// Check verifies one dependency.
type Check func(ctx context.Context) error

// Readiness verifies all service dependencies are functioning.
// Returns "READY" if all checks pass, 503 Service Unavailable if any fail.
func Readiness(log *slog.Logger, checks ...Check) handler.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx *handler.Context) (any, error) {
		g, gctx := errgroup.WithContext(ctx)
		for _, check := range checks {
			g.Go(func() error { return check(gctx) })
		}
		if err := g.Wait(); err != nil {
			log.ErrorContext(ctx, "readiness check failed", logger.Error(err))
			return nil, response.ErrServiceUnavailable.WithError(err)
		}
		return "READY", nil
	}
}
