package async

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Background is a registrar for fire-and-forget tasks.
// Safe for concurrent use.
type Background struct {
	mu      sync.Mutex
	pending map[*Task]struct{}
	logger  *slog.Logger
}

// BackgroundOption configures a Background.
type BackgroundOption func(*Background)

// WithLogger sets the logger used to report task failures.
func WithLogger(logger *slog.Logger) BackgroundOption {
	return func(b *Background) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBackground creates a task registrar.
func NewBackground(opts ...BackgroundOption) *Background {
	b := &Background{
		pending: make(map[*Task]struct{}),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Go schedules fn. The task keeps running after ctx is cancelled; only the
// values of ctx are inherited. Errors are logged, never returned.
func (b *Background) Go(ctx context.Context, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	detached := context.WithoutCancel(ctx)

	b.mu.Lock()
	f := Start(detached, fn)
	b.pending[f] = struct{}{}
	b.mu.Unlock()

	go func() {
		if err := f.Await(); err != nil {
			b.logger.WarnContext(detached, "background task failed", slog.Any("error", err))
		}
		b.mu.Lock()
		delete(b.pending, f)
		b.mu.Unlock()
	}()
}

// Pending returns the number of tasks that have not finished yet.
func (b *Background) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Wait blocks until every task registered so far has finished or timeout
// elapses. A non-positive timeout waits without bound.
func (b *Background) Wait(timeout time.Duration) error {
	b.mu.Lock()
	futures := make([]*Task, 0, len(b.pending))
	for f := range b.pending {
		futures = append(futures, f)
	}
	b.mu.Unlock()

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for _, f := range futures {
		if deadline.IsZero() {
			_ = f.Await()
			continue
		}
		left := time.Until(deadline)
		if left <= 0 {
			return ErrTimeout
		}
		if err := f.AwaitWithTimeout(left); err == ErrTimeout {
			return err
		}
	}
	return nil
}
