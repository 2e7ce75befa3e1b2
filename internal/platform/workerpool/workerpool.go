// Package workerpool provides a bounded pool of reusable workers for
// filesystem-heavy operations: report scanning, backup copies, and any unit
// of work that a request handler wants to bound with a deadline.
//
// Submitted tasks are never cancelled. A caller that stops waiting (deadline
// exceeded) only abandons the result; the task itself runs to completion on
// its worker.
package workerpool

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ErrTimeout is returned by Task.Wait when the context expires before the
// task completes. The task keeps running.
var ErrTimeout = errors.New("worker pool task timed out")

// ErrClosed is returned by Submit after the pool has been shut down.
var ErrClosed = errors.New("worker pool is closed")

// Task is a handle to a submitted unit of work.
type Task struct {
	name   string
	fn     func() (interface{}, error)
	done   chan struct{}
	result interface{}
	err    error
}

// Wait blocks until the task completes or ctx expires. On expiry it returns
// ErrTimeout (wrapping the context error); the underlying work is not
// cancelled.
func (t *Task) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, t.name)
		}
		return nil, ctx.Err()
	}
}

// Stats is a point-in-time snapshot of pool activity.
type Stats struct {
	Size     int   `json:"size"`
	Active   int64 `json:"active"`
	Queued   int   `json:"queued"`
	Executed int64 `json:"executed"`
}

// Pool is a fixed-size worker pool over an unbounded FIFO queue. The queue
// must not be bounded: tasks running on the pool submit sub-tasks to the same
// pool (a report listing fans out one stat per file), and a bounded queue
// would let a worker block on its own pool and wedge it.
type Pool struct {
	size     int
	logger   zerolog.Logger
	wg       sync.WaitGroup
	mu       sync.Mutex
	cond     *sync.Cond
	queue    *list.List
	closed   bool
	active   int64
	executed int64
}

// New starts a pool with the given number of workers.
func New(size int, logger zerolog.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{
		size:   size,
		queue:  list.New(),
		logger: logger,
	}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

// worker pops tasks until the pool is closed and the queue is drained.
func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.queue.Len() == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.queue.Len() == 0 {
			p.mu.Unlock()
			return
		}
		t := p.queue.Remove(p.queue.Front()).(*Task)
		p.mu.Unlock()

		atomic.AddInt64(&p.active, 1)
		p.run(t)
		atomic.AddInt64(&p.active, -1)
		atomic.AddInt64(&p.executed, 1)
	}
}

// run executes one task, converting a panic into a task error so a bad task
// never kills its worker.
func (p *Pool) run(t *Task) {
	defer func() {
		if r := recover(); r != nil {
			t.err = fmt.Errorf("task %s panicked: %v", t.name, r)
			p.logger.Error().Str("task", t.name).Interface("panic", r).Msg("worker pool task panicked")
		}
		close(t.done)
	}()
	t.result, t.err = t.fn()
}

// Submit enqueues fn for execution and returns a handle to wait on. It never
// blocks: the queue grows as needed, so a task may safely submit sub-tasks to
// its own pool.
func (p *Pool) Submit(name string, fn func() (interface{}, error)) (*Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	t := &Task{name: name, fn: fn, done: make(chan struct{})}
	p.queue.PushBack(t)
	p.cond.Signal()
	return t, nil
}

// Go is Submit for fire-and-forget work; the error, if any, is logged and
// otherwise discarded.
func (p *Pool) Go(name string, fn func() error) {
	_, err := p.Submit(name, func() (interface{}, error) {
		if err := fn(); err != nil {
			p.logger.Warn().Str("task", name).Err(err).Msg("background task failed")
		}
		return nil, nil
	})
	if err != nil {
		p.logger.Warn().Str("task", name).Err(err).Msg("background task rejected")
	}
}

// Close stops accepting new tasks and waits for queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
}

// Healthy reports whether the pool can still accept work.
func (p *Pool) Healthy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Stats returns a snapshot of pool activity.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	queued := p.queue.Len()
	p.mu.Unlock()
	return Stats{
		Size:     p.size,
		Active:   atomic.LoadInt64(&p.active),
		Queued:   queued,
		Executed: atomic.LoadInt64(&p.executed),
	}
}
