package background

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/pkg/ctxutil"
)

func TestRunner_RunsJobDetachedFromCaller(t *testing.T) {
	t.Parallel()

	r := New(slog.Default(), 2, time.Second)
	userID := uuid.New()
	ctx, cancel := context.WithCancel(ctxutil.WithUserID(context.Background(), userID))

	var (
		got    uuid.UUID
		ctxErr error
	)
	started := make(chan struct{})
	release := make(chan struct{})
	err := r.Go(ctx, "detached", func(ctx context.Context) error {
		close(started)
		<-release
		got, _ = ctxutil.UserIDFromCtx(ctx)
		ctxErr = ctx.Err()
		return nil
	})
	if err != nil {
		t.Fatalf("Go: %v", err)
	}

	<-started
	cancel()
	close(release)

	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if got != userID {
		t.Errorf("user id = %s, want %s", got, userID)
	}
	if ctxErr != nil {
		t.Errorf("job ctx canceled with caller: %v", ctxErr)
	}
}

func TestRunner_LimitsConcurrency(t *testing.T) {
	t.Parallel()

	r := New(slog.Default(), 2, time.Second)

	var (
		active  atomic.Int32
		maxSeen atomic.Int32
	)
	for i := 0; i < 8; i++ {
		_ = r.Go(context.Background(), "limited", func(context.Context) error {
			n := active.Add(1)
			for {
				m := maxSeen.Load()
				if n <= m || maxSeen.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			active.Add(-1)
			return nil
		})
	}

	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if maxSeen.Load() > 2 {
		t.Errorf("max concurrent = %d, want <= 2", maxSeen.Load())
	}
}

func TestRunner_AppliesTimeout(t *testing.T) {
	t.Parallel()

	r := New(slog.Default(), 1, 20*time.Millisecond)

	var jobErr error
	_ = r.Go(context.Background(), "slow", func(ctx context.Context) error {
		<-ctx.Done()
		jobErr = ctx.Err()
		return jobErr
	})

	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !errors.Is(jobErr, context.DeadlineExceeded) {
		t.Errorf("job err = %v, want DeadlineExceeded", jobErr)
	}
}

func TestRunner_RecoversPanic(t *testing.T) {
	t.Parallel()

	r := New(slog.Default(), 1, time.Second)

	_ = r.Go(context.Background(), "panics", func(context.Context) error {
		panic("boom")
	})

	var ran atomic.Bool
	_ = r.Go(context.Background(), "after", func(context.Context) error {
		ran.Store(true)
		return nil
	})

	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !ran.Load() {
		t.Error("job after panic did not run")
	}
}

func TestRunner_RejectsAfterShutdown(t *testing.T) {
	t.Parallel()

	r := New(slog.Default(), 1, time.Second)
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	err := r.Go(context.Background(), "late", func(context.Context) error { return nil })
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestRunner_ShutdownDeadlineCancelsJobs(t *testing.T) {
	t.Parallel()

	r := New(slog.Default(), 1, 0)

	var wg sync.WaitGroup
	wg.Add(1)
	var jobErr error
	_ = r.Go(context.Background(), "stuck", func(ctx context.Context) error {
		defer wg.Done()
		<-ctx.Done()
		jobErr = ctx.Err()
		return jobErr
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Shutdown(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Shutdown err = %v, want DeadlineExceeded", err)
	}
	wg.Wait()
	if !errors.Is(jobErr, context.Canceled) {
		t.Errorf("job err = %v, want Canceled", jobErr)
	}
}
