// Package tasks runs fire-and-forget background work: search index updates,
// notifications, download audit entries. Unlike the request worker pool, the
// queue here is unbounded and callers never wait on results.
package tasks

import (
	"container/list"
	"sync"

	"github.com/rs/zerolog"
)

// Task is a named unit of background work.
type Task struct {
	Name string
	Fn   func() error
}

// Runner drains an unbounded FIFO queue with a fixed set of persistent
// workers. A panicking task is logged and the worker keeps going.
type Runner struct {
	logger  zerolog.Logger
	mu      sync.Mutex
	cond    *sync.Cond
	queue   *list.List
	workers int
	closed  bool
	wg      sync.WaitGroup
}

// NewRunner starts a runner with the given number of workers.
func NewRunner(workers int, logger zerolog.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	r := &Runner{
		logger:  logger,
		queue:   list.New(),
		workers: workers,
	}
	r.cond = sync.NewCond(&r.mu)
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	return r
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()
	for {
		r.mu.Lock()
		for r.queue.Len() == 0 && !r.closed {
			r.cond.Wait()
		}
		if r.queue.Len() == 0 && r.closed {
			r.mu.Unlock()
			return
		}
		front := r.queue.Front()
		r.queue.Remove(front)
		r.mu.Unlock()

		t := front.Value.(Task)
		r.execute(id, t)
	}
}

func (r *Runner) execute(worker int, t Task) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Int("worker", worker).
				Str("task", t.Name).
				Interface("panic", rec).
				Msg("background task panicked")
		}
	}()
	if err := t.Fn(); err != nil {
		r.logger.Warn().
			Int("worker", worker).
			Str("task", t.Name).
			Err(err).
			Msg("background task failed")
	}
}

// Enqueue adds a task to the queue. It reports false if the runner has been
// closed and the task was dropped.
func (r *Runner) Enqueue(name string, fn func() error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.logger.Warn().Str("task", name).Msg("task dropped: runner closed")
		return false
	}
	r.queue.PushBack(Task{Name: name, Fn: fn})
	r.cond.Signal()
	return true
}

// QueueDepth returns the number of tasks waiting to run.
func (r *Runner) QueueDepth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Len()
}

// Workers returns the number of worker goroutines.
func (r *Runner) Workers() int { return r.workers }

// Healthy reports whether the runner is still accepting tasks.
func (r *Runner) Healthy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

// Close stops accepting tasks, drains the queue, and waits for the workers
// to exit.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.cond.Broadcast()
	r.mu.Unlock()
	r.wg.Wait()
}
