// Package background runs fire-and-forget jobs with bounded concurrency and a
// per-job deadline, and lets the process wait for them on shutdown.
package background

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/heartmarshall/matterdesk-backend/pkg/ctxutil"
)

// ErrClosed is returned by Go after Shutdown has been called.
var ErrClosed = errors.New("background: runner closed")

// Job is a unit of background work.
type Job func(ctx context.Context) error

// Runner executes jobs detached from the caller's cancellation.
type Runner struct {
	log     *slog.Logger
	sem     *semaphore.Weighted
	timeout time.Duration

	// stop is canceled when Shutdown gives up waiting.
	stop   context.Context
	abort  context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// New creates a Runner allowing at most maxConcurrent jobs at a time, each
// bounded by timeout. A non-positive timeout means no per-job deadline.
func New(log *slog.Logger, maxConcurrent int, timeout time.Duration) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	stop, abort := context.WithCancel(context.Background())
	return &Runner{
		log:     log.With("component", "background"),
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		timeout: timeout,
		stop:    stop,
		abort:   abort,
	}
}

// Go schedules job under name. The job context keeps the values of ctx
// (caller identity, request id) but not its cancellation. Go never blocks on
// the concurrency limit; queued jobs wait for a slot in their own goroutine.
func (r *Runner) Go(ctx context.Context, name string, job Job) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.wg.Add(1)
	r.mu.Unlock()

	jobCtx := ctxutil.Detach(ctx)
	go func() {
		defer r.wg.Done()
		r.run(jobCtx, name, job)
	}()
	return nil
}

func (r *Runner) run(ctx context.Context, name string, job Job) {
	log := r.log.With(slog.String("job", name))

	// Shutdown abort also releases jobs waiting for a slot.
	ctx, cancelStop := context.WithCancel(ctx)
	defer cancelStop()
	go func() {
		select {
		case <-r.stop.Done():
			cancelStop()
		case <-ctx.Done():
		}
	}()

	if err := r.sem.Acquire(ctx, 1); err != nil {
		log.WarnContext(ctx, "job dropped before start", slog.String("error", err.Error()))
		return
	}
	defer r.sem.Release(1)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	err := safeCall(ctx, job)
	attrs := []any{slog.Duration("duration", time.Since(start))}
	if err != nil {
		log.ErrorContext(ctx, "job failed", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	log.DebugContext(ctx, "job finished", attrs...)
}

func safeCall(ctx context.Context, job Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()
	return job(ctx)
}

// Shutdown stops accepting jobs and waits for running ones. If ctx ends
// first, remaining jobs are canceled and ctx.Err() is returned once they
// have returned.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.abort()
		return nil
	case <-ctx.Done():
		r.abort()
		<-done
		return ctx.Err()
	}
}
