package parallel

import (
	"errors"
	"runtime"
	"sync"
)

var ErrClosed = errors.New("pool closed")

// Pool runs submitted jobs. A single-worker pool runs each job inline on the
// submitting goroutine; larger pools hand jobs to worker goroutines.
type Pool struct {
	wg      sync.WaitGroup
	mu      sync.RWMutex
	jobs    chan func()
	closed  bool
	workers int
	stop    func()
}

func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		workers: numWorkers,
		stop:    func() {},
	}

	if numWorkers > 1 {
		pool.jobs = make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range pool.jobs {
					f()
				}
			})
		}

		pool.stop = sync.OnceFunc(func() { close(pool.jobs) })
	}

	return pool
}

func (p *Pool) Workers() int {
	return p.workers
}

// Do runs f, or queues it for a worker. It blocks while the queue is full
// and returns ErrClosed once Close has been called.
func (p *Pool) Do(f func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}
	if p.jobs == nil {
		f()
		return nil
	}

	p.jobs <- f
	return nil
}

// Close stops accepting jobs and waits for queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.stop()
	p.mu.Unlock()

	p.wg.Wait()
}
