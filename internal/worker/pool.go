package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned for work offered after Close
var ErrPoolClosed = errors.New("worker pool is closed")

// Stats is a point-in-time view of pool counters
type Stats struct {
	TotalJobs     int64
	CompletedJobs int64
	ActiveWorkers int64
	RejectedJobs  int64
}

// Pool runs analyzer calls on a fixed number of goroutines
type Pool struct {
	workers  int
	jobQueue chan func()
	wg       sync.WaitGroup
	workerWg sync.WaitGroup
	once     sync.Once

	mu     sync.RWMutex
	closed bool

	totalJobs     atomic.Int64
	completedJobs atomic.Int64
	activeWorkers atomic.Int64
	rejectedJobs  atomic.Int64
}

// NewPool creates a pool with the specified number of workers. Zero or fewer
// means one per CPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Pool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start launches the workers; later calls do nothing
func (p *Pool) Start() {
	p.once.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.workerWg.Add(1)
			go p.worker()
		}
	})
}

func (p *Pool) worker() {
	defer p.workerWg.Done()
	for job := range p.jobQueue {
		p.run(job)
	}
}

func (p *Pool) run(job func()) {
	p.activeWorkers.Add(1)
	defer func() {
		p.activeWorkers.Add(-1)
		p.completedJobs.Add(1)
		p.wg.Done()
	}()
	job()
}

// Do queues job, waiting for room when the queue is full, and blocks until the
// job has run. It gives up with ctx.Err() when ctx ends first; a job that was
// already queued still runs, so it must honor the same ctx itself.
func (p *Pool) Do(ctx context.Context, job func()) error {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		job()
	}

	if err := p.enqueue(ctx, wrapped); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) enqueue(ctx context.Context, job func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.rejectedJobs.Add(1)
		return ErrPoolClosed
	}

	p.wg.Add(1)
	select {
	case p.jobQueue <- job:
		p.totalJobs.Add(1)
		return nil
	case <-ctx.Done():
		p.wg.Done()
		p.rejectedJobs.Add(1)
		return ctx.Err()
	}
}

// Wait blocks until every queued job has finished
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Close stops accepting jobs, lets queued jobs finish and stops the workers.
// Callers blocked in Do hold Close off until they are queued or their context ends.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.workerWg.Wait()
}

// GetStats returns the current counters
func (p *Pool) GetStats() Stats {
	return Stats{
		TotalJobs:     p.totalJobs.Load(),
		CompletedJobs: p.completedJobs.Load(),
		ActiveWorkers: p.activeWorkers.Load(),
		RejectedJobs:  p.rejectedJobs.Load(),
	}
}
