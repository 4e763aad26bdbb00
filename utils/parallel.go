package utils

import (
	"context"
	"sync"
)

// WorkerPool runs submitted jobs on a fixed number of goroutines. The scan
// orchestrator uses it to bound concurrent provider requests.
type WorkerPool struct {
	jobCh  chan func()
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewWorkerPool creates a pool with maxWorkers worker goroutines.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	wp := &WorkerPool{
		jobCh:  make(chan func(), maxWorkers*2),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < maxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}

	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobCh:
			if !ok {
				return
			}
			job()
		case <-wp.ctx.Done():
			return
		}
	}
}

// Submit queues a job. Jobs submitted after Close are dropped.
func (wp *WorkerPool) Submit(job func()) {
	select {
	case wp.jobCh <- job:
	case <-wp.ctx.Done():
	}
}

// Close stops the pool and waits for the workers to exit. Callers that need
// all submitted jobs to have finished should track them with their own
// WaitGroup before closing.
func (wp *WorkerPool) Close() {
	wp.cancel()
	wp.wg.Wait()
}
