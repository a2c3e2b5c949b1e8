// Package async provides the future type and the fire-and-forget task
// registrar behind the request context's WaitUntil.
//
// # Core Types
//
// Task is a running function that only reports an error. It can be awaited
// (Await), awaited with a bound (AwaitWithTimeout) or polled (Finished).
//
//	task := async.Start(ctx, func(ctx context.Context) error {
//		return store.Put(ctx, key, value)
//	})
//	if err := task.AwaitWithTimeout(time.Second); errors.Is(err, async.ErrTimeout) {
//		log.Println("store is slow")
//	}
//
// Background schedules tasks that outlive the request which registered them.
// Tasks run on a context detached from request cancellation, failures are
// logged and never reported to the caller, and no ordering is guaranteed
// between a returned response and the task's completion.
//
//	bg := async.NewBackground(async.WithLogger(logger))
//	bg.Go(r.Context(), func(ctx context.Context) error {
//		return cache.Put(ctx, req, resp)
//	})
//
//	// On shutdown, drain outstanding work.
//	bg.Wait(10 * time.Second)
//
// # Error Handling
//
//   - ErrTimeout: returned when AwaitWithTimeout or Background.Wait exceeds its duration
//
// # Context Support
//
// Start respects context cancellation: if ctx is cancelled before the function
// starts, the future completes immediately with ctx.Err().
package async
