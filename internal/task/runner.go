// Package task runs best-effort side effects: operations whose failure must
// never reach the caller's control flow, like marking a conversation read.
// The runner makes the fire-and-forget contract explicit instead of leaving
// unawaited calls scattered at call sites.
package task

import (
	"context"
	"log"
	"sync"
	"time"
)

type Runner struct {
	timeout  time.Duration
	backoff  time.Duration
	attempts int
	wg       sync.WaitGroup
}

// NewRunner configures the per-attempt timeout, the delay between retries
// and the total attempt count. attempts < 1 is treated as a single attempt.
func NewRunner(timeout, backoff time.Duration, attempts int) *Runner {
	if attempts < 1 {
		attempts = 1
	}
	return &Runner{timeout: timeout, backoff: backoff, attempts: attempts}
}

// FireAndForget runs op in the background with bounded retry. Failures are
// logged under name and then dropped; the caller continues regardless.
func (r *Runner) FireAndForget(name string, op func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		var err error
		for attempt := 1; attempt <= r.attempts; attempt++ {
			err = r.runOnce(op)
			if err == nil {
				return
			}
			if attempt < r.attempts {
				time.Sleep(r.backoff * time.Duration(attempt))
			}
		}
		log.Printf("background task %s failed after %d attempts: %v", name, r.attempts, err)
	}()
}

func (r *Runner) runOnce(op func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return op(ctx)
}

// Wait blocks until all spawned tasks finish. Used on shutdown and in tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}
