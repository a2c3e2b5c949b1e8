package async

import (
	"context"
	"time"
)

// Task is a function running on its own goroutine whose only result is an
// error.
type Task struct {
	done chan struct{}
	err  error
}

// Start runs fn on a new goroutine. When ctx is already done fn is not
// called and the task finishes with ctx.Err(). A panic in fn becomes a
// *PanicError.
func Start(ctx context.Context, fn func(context.Context) error) *Task {
	t := &Task{done: make(chan struct{})}
	go t.run(ctx, fn)
	return t
}

func (t *Task) run(ctx context.Context, fn func(context.Context) error) {
	defer close(t.done)
	defer func() {
		if r := recover(); r != nil {
			t.err = NewPanicError(r)
		}
	}()

	if err := ctx.Err(); err != nil {
		t.err = err
		return
	}
	t.err = fn(ctx)
}

// Done is closed once the task returns.
func (t *Task) Done() <-chan struct{} { return t.done }

// Await blocks until the task returns.
func (t *Task) Await() error {
	<-t.done
	return t.err
}

// AwaitWithTimeout is Await bounded by d. It returns ErrTimeout when d
// elapses first; the task keeps running.
func (t *Task) AwaitWithTimeout(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-t.done:
		return t.err
	case <-timer.C:
		return ErrTimeout
	}
}

// Finished reports completion without blocking.
func (t *Task) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
