package engine

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrPoolClosed is returned by Submit after Close has been called.
var ErrPoolClosed = errors.New("worker pool closed")

// Job is a unit of work executed by the pool.
type Job interface {
	Execute(ctx context.Context) error
}

// WorkerPool runs pair-matching jobs across a fixed set of goroutines.
// Every job accepted by Submit is guaranteed to execute: workers drain the
// queue on shutdown rather than abandoning it, so callers waiting on
// per-job completion signals never hang.
type WorkerPool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewWorkerPool creates a pool with the given size; size <= 0 selects a
// CPU-based default that reserves a quarter of the cores for the rest of
// the process.
func NewWorkerPool(ctx context.Context, size int) *WorkerPool {
	if size <= 0 {
		totalCPU := runtime.NumCPU()
		reserve := totalCPU / 4
		if reserve < 1 {
			reserve = 1
		}
		size = totalCPU - reserve
		if size < 1 {
			size = 1
		}
	}
	log.Info().
		Int("workers", size).
		Msg("Worker pool initialized")

	poolCtx, cancel := context.WithCancel(ctx)
	pool := &WorkerPool{
		workers:  size,
		jobQueue: make(chan Job, size*2),
		ctx:      poolCtx,
		cancel:   cancel,
	}

	for i := 0; i < pool.workers; i++ {
		pool.wg.Add(1)
		go pool.worker()
	}
	return pool
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()

	// jobs observe cancellation themselves through the contexts they carry;
	// the worker's own exit condition is the closed queue, which keeps
	// queued jobs from being stranded on shutdown
	for job := range p.jobQueue {
		if err := job.Execute(p.ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Debug().Err(err).Msg("Job aborted by cancelled context")
				continue
			}
			log.Error().Err(err).Msg("Worker failed to execute job")
		}
	}
}

// Submit enqueues a job, blocking until a worker slot frees up or the pool
// shuts down. The lock makes Submit mutually exclusive with Close, so an
// accepted job is always drained by a worker.
func (p *WorkerPool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobQueue <- job:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Close stops accepting jobs, waits for workers to drain the queue, then
// cancels the pool context. Safe to call more than once.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

// Size returns the number of workers.
func (p *WorkerPool) Size() int {
	return p.workers
}
