// Package parallel provides the worker pool that runs independent per-layer
// tasks of one generation stage.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a pool of goroutines executing per-layer geometry tasks.
//
// Each worker owns a queue and steals from the other queues when its own is
// empty, so a stage with a few expensive layers (large overhangs) does not
// leave workers idle behind one slow queue.
//
// A nil *Pool is valid and runs everything on the calling goroutine.
//
// Tasks must not call back into the pool they run on; stages are barriers
// and nest only through plain goroutines.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int

	// queues holds per-worker task queues.
	queues []chan func()

	done chan struct{}
	wg   sync.WaitGroup

	running atomic.Bool
}

// NewPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case task := <-own:
			run(task)
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case task := <-own:
				run(task)
			}
		}
	}
}

func run(task func()) {
	if task != nil {
		task()
	}
}

func (p *Pool) drain(queue chan func()) {
	for {
		select {
		case task := <-queue:
			run(task)
		default:
			return
		}
	}
}

// steal takes one task from another worker's queue, or returns nil.
func (p *Pool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case task := <-p.queues[i]:
			return task
		default:
		}
	}
	return nil
}

// ExecuteAll runs every task and returns when all have completed.
// On a closed pool the remaining tasks run on the calling goroutine.
func (p *Pool) ExecuteAll(tasks []func()) {
	if len(tasks) == 0 {
		return
	}
	if p == nil || !p.running.Load() {
		for _, t := range tasks {
			run(t)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, fn := range tasks {
		wrapped := func() {
			defer wg.Done()
			run(fn)
		}
		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			wrapped()
		}
	}
	wg.Wait()
}

// ForEach calls fn(i) for every i in [0, n) and waits for all calls.
// Calls for different i run concurrently; fn must only write to state owned
// by index i.
func (p *Pool) ForEach(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	tasks := make([]func(), n)
	for i := range n {
		tasks[i] = func() { fn(i) }
	}
	p.ExecuteAll(tasks)
}

// Map calls fn(i) for every i in [0, n) on the pool and returns the results
// in index order.
func Map[T any](p *Pool, n int, fn func(i int) T) []T {
	out := make([]T, max(n, 0))
	p.ForEach(n, func(i int) {
		out[i] = fn(i)
	})
	return out
}

// Close stops the pool after running all queued tasks.
// Close is safe to call multiple times.
func (p *Pool) Close() {
	if p == nil || !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers. A nil pool reports one.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// IsRunning reports whether the pool accepts work.
func (p *Pool) IsRunning() bool {
	return p != nil && p.running.Load()
}
