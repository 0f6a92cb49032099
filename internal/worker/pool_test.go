package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

// mockJob implements Job
type mockJob struct {
	key       string
	duration  time.Duration
	shouldErr bool
	executed  *int32
}

func (j *mockJob) Key() string { return j.key }

func (j *mockJob) Run(ctx context.Context) error {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if j.shouldErr {
		return errors.New("job error")
	}
	return nil
}

func TestNewPool(t *testing.T) {
	for _, n := range []int{0, -1} {
		p := NewPool(context.Background(), n)
		if p.workers != 1 {
			t.Errorf("NewPool(%d) workers = %d, want 1", n, p.workers)
		}
	}
	if p := NewPool(context.Background(), 4); p.workers != 4 {
		t.Errorf("expected 4 workers, got %d", p.workers)
	}
}

func TestPoolKeepsSubmissionOrder(t *testing.T) {
	var executed int32
	var jobs []Job
	for i := 0; i < 10; i++ {
		jobs = append(jobs, &mockJob{
			key:       fmt.Sprintf("gene-%d", i),
			duration:  time.Duration(10-i) * time.Millisecond,
			shouldErr: i%3 == 0,
			executed:  &executed,
		})
	}

	outcomes := RunAll(context.Background(), 3, jobs)

	if len(outcomes) != len(jobs) {
		t.Fatalf("expected %d outcomes, got %d", len(jobs), len(outcomes))
	}
	for i, o := range outcomes {
		if o.Key != fmt.Sprintf("gene-%d", i) {
			t.Errorf("outcome %d has key %s", i, o.Key)
		}
		if (o.Err != nil) != (i%3 == 0) {
			t.Errorf("outcome %d err = %v", i, o.Err)
		}
	}
	if atomic.LoadInt32(&executed) != int32(len(jobs)) {
		t.Errorf("executed %d jobs", executed)
	}
}

func TestPoolCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()

	pool.Submit(&mockJob{key: "slow", duration: time.Second})
	cancel()
	pool.Submit(&mockJob{key: "never"})

	outcomes := pool.Wait()
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", o.Key, o.Err)
		}
	}
}
