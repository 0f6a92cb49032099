package worker

import (
	"context"
	"sync"
	"time"
)

// throttleSleep is overridable in tests
var throttleSleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Throttle pauses after every batch of submissions to a shared service.
// It is cooperative: callers invoke Wait before each submission.
type Throttle struct {
	every int
	pause time.Duration

	mu    sync.Mutex
	count int
}

// NewThrottle pauses for pause after every `every` submissions. every <= 0
// disables the throttle.
func NewThrottle(every int, pause time.Duration) *Throttle {
	return &Throttle{every: every, pause: pause}
}

// Wait records one submission, first pausing if the previous batch is full.
// The lock is held through the pause so concurrent callers queue behind it.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.every > 0 && t.pause > 0 && t.count > 0 && t.count%t.every == 0 {
		if err := throttleSleep(ctx, t.pause); err != nil {
			return err
		}
	}
	t.count++
	return nil
}

// Count returns the number of submissions recorded
func (t *Throttle) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}
