// Package workpool runs background jobs such as image decoding and
// per-layer filtering on a fixed set of goroutines.
package workpool

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrClosed is returned when work is submitted to a closed pool.
var ErrClosed = errors.New("workpool: closed")

// Pool is a pool of goroutines with per-worker queues.
//
// Each worker pulls from its own queue and steals from the others when its
// queue is empty, which balances load when some jobs are slower than others.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers    int
	workQueues []chan func()
	done       chan struct{}
	wg         sync.WaitGroup

	// mu orders queue sends before Close so that workers drain every
	// accepted job before exiting.
	mu     sync.RWMutex
	closed bool
}

// New creates a pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &Pool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]
	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return
		case work := <-myQueue:
			work()
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drainQueue(myQueue)
				return
			case work := <-myQueue:
				work()
			}
		}
	}
}

// drainQueue executes all remaining work in a queue.
func (p *Pool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

// steal takes one job from another worker's queue, or returns nil.
func (p *Pool) steal(myID int) func() {
	for i := range p.workers {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// Submit queues fn on the worker with the shortest queue.
// It blocks while every queue is full and returns ctx.Err() if ctx ends
// first. Submit must not be called from inside a job.
func (p *Pool) Submit(ctx context.Context, fn func()) error {
	if fn == nil {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	minIdx := 0
	minLen := len(p.workQueues[0])
	for i := 1; i < p.workers; i++ {
		if l := len(p.workQueues[i]); l < minLen {
			minLen, minIdx = l, i
		}
	}

	select {
	case p.workQueues[minIdx] <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run distributes work round-robin and waits for every accepted job.
// Jobs not yet queued when ctx ends are skipped and ctx.Err() is returned.
func (p *Pool) Run(ctx context.Context, work []func()) error {
	if len(work) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	var err error

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrClosed
	}
	for i, fn := range work {
		wg.Add(1)
		wrapped := func() {
			defer wg.Done()
			fn()
		}
		select {
		case p.workQueues[i%p.workers] <- wrapped:
			continue
		case <-ctx.Done():
			wg.Done()
			err = ctx.Err()
		}
		break
	}
	p.mu.RUnlock()

	wg.Wait()
	return err
}

// Close stops accepting work, waits for queued jobs to finish and stops
// the workers. Close is safe to call multiple times.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.done)
	p.mu.Unlock()

	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// Pending returns the approximate number of queued jobs.
func (p *Pool) Pending() int {
	total := 0
	for _, q := range p.workQueues {
		total += len(q)
	}
	return total
}
