package worker

import (
	"context"
	"sync"
)

// Job is one unit of work, typically one gene's reciprocal pass
type Job interface {
	Key() string
	Run(ctx context.Context) error
}

// Outcome is the result of one job
type Outcome struct {
	Key string
	Err error
}

type indexedJob struct {
	index int
	job   Job
}

// Pool runs jobs on a fixed number of workers. Outcomes come back in
// submission order regardless of completion order.
type Pool struct {
	workers    int
	jobQueue   chan indexedJob
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc

	mu        sync.Mutex
	submitted int
	outcomes  map[int]Outcome
}

// NewPool creates a pool bound to ctx. workers below 1 means 1.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan indexedJob, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
		outcomes:   make(map[int]Outcome),
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case ij, ok := <-p.jobQueue:
			if !ok {
				return
			}
			err := p.ctx.Err()
			if err == nil {
				err = ij.job.Run(p.ctx)
			}
			p.record(ij.index, Outcome{Key: ij.job.Key(), Err: err})
		}
	}
}

func (p *Pool) record(index int, o Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcomes[index] = o
}

// Submit queues a job. It returns false if the pool was cancelled.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	index := p.submitted
	p.submitted++
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		p.record(index, Outcome{Key: job.Key(), Err: p.ctx.Err()})
		return false
	case p.jobQueue <- indexedJob{index: index, job: job}:
		return true
	}
}

// Wait closes the queue, waits for the workers and returns every outcome.
// Jobs never started because of cancellation carry the context error.
func (p *Pool) Wait() []Outcome {
	close(p.jobQueue)
	p.wg.Wait()

	// Drain jobs that were queued but never picked up
	for ij := range p.jobQueue {
		p.record(ij.index, Outcome{Key: ij.job.Key(), Err: p.ctx.Err()})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Outcome, p.submitted)
	for i := range out {
		out[i] = p.outcomes[i]
	}
	return out
}

// Shutdown cancels outstanding work. Wait must still be called.
func (p *Pool) Shutdown() {
	p.cancelFunc()
}

// RunAll is a convenience wrapper running jobs to completion
func RunAll(ctx context.Context, workers int, jobs []Job) []Outcome {
	pool := NewPool(ctx, workers)
	pool.Start()
	for _, j := range jobs {
		pool.Submit(j)
	}
	outcomes := pool.Wait()
	pool.Shutdown()
	return outcomes
}
