package worker

import (
	"context"
	"testing"
	"time"
)

func TestThrottlePausesAfterEveryBatch(t *testing.T) {
	var pauses []time.Duration
	orig := throttleSleep
	throttleSleep = func(ctx context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}
	defer func() { throttleSleep = orig }()

	th := NewThrottle(25, time.Minute)
	for i := 0; i < 60; i++ {
		if err := th.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}

	// Pauses before submissions 26 and 51
	if len(pauses) != 2 {
		t.Fatalf("paused %d times, want 2", len(pauses))
	}
	for _, p := range pauses {
		if p != time.Minute {
			t.Errorf("pause = %v, want 1m", p)
		}
	}
	if th.Count() != 60 {
		t.Errorf("Count() = %d", th.Count())
	}
}

func TestThrottleDisabled(t *testing.T) {
	orig := throttleSleep
	throttleSleep = func(ctx context.Context, d time.Duration) error {
		t.Fatal("disabled throttle slept")
		return nil
	}
	defer func() { throttleSleep = orig }()

	th := NewThrottle(0, time.Minute)
	for i := 0; i < 30; i++ {
		_ = th.Wait(context.Background())
	}
}

func TestThrottleCancelledPause(t *testing.T) {
	th := NewThrottle(1, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	if err := th.Wait(ctx); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}
	cancel()
	if err := th.Wait(ctx); err == nil {
		t.Error("expected cancellation error during pause")
	}
	if th.Count() != 1 {
		t.Errorf("cancelled submission was counted: %d", th.Count())
	}
}
