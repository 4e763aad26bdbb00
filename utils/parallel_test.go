package utils

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool_RunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var count int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
		})
	}
	wg.Wait()

	assert.Equal(t, int64(100), atomic.LoadInt64(&count))
}

func TestWorkerPool_BoundsConcurrency(t *testing.T) {
	const workers = 3
	pool := NewWorkerPool(workers)
	defer pool.Close()

	var active, peak int64
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			n := atomic.AddInt64(&active, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&active, -1)
		})
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(workers))
}

func TestWorkerPool_SubmitAfterCloseIsDropped(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Close()

	ran := false
	pool.Submit(func() { ran = true })

	assert.False(t, ran)
}

func TestWorkerPool_MinimumOneWorker(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	ran := false
	pool.Submit(func() {
		ran = true
		wg.Done()
	})
	wg.Wait()

	assert.True(t, ran)
}
