package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestFireAndForget_RetriesUntilSuccess(t *testing.T) {
	r := NewRunner(time.Second, time.Millisecond, 3)

	var calls int32
	r.FireAndForget("flaky", func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	})
	r.Wait()

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestFireAndForget_FailureNeverPropagates(t *testing.T) {
	r := NewRunner(time.Second, 0, 2)

	// the call must return immediately and the permanent failure must stay
	// inside the runner
	done := make(chan struct{})
	go func() {
		r.FireAndForget("doomed", func(ctx context.Context) error {
			return errors.New("permanent")
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("FireAndForget blocked the caller")
	}
	r.Wait()
}

func TestFireAndForget_AttemptTimeout(t *testing.T) {
	r := NewRunner(10*time.Millisecond, 0, 1)

	var sawDeadline atomic.Bool
	r.FireAndForget("slow", func(ctx context.Context) error {
		<-ctx.Done()
		sawDeadline.Store(true)
		return ctx.Err()
	})
	r.Wait()

	if !sawDeadline.Load() {
		t.Fatal("expected the per-attempt context to expire")
	}
}
