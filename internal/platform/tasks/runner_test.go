package tasks

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestEnqueueRunsTask(t *testing.T) {
	r := NewRunner(2, zerolog.Nop())
	defer r.Close()

	done := make(chan struct{})
	if ok := r.Enqueue("ping", func() error {
		close(done)
		return nil
	}); !ok {
		t.Fatal("enqueue rejected")
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestCloseDrainsQueue(t *testing.T) {
	r := NewRunner(2, zerolog.Nop())

	var ran int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		r.Enqueue("count", func() error {
			defer wg.Done()
			atomic.AddInt64(&ran, 1)
			return nil
		})
	}
	r.Close()
	wg.Wait()
	if got := atomic.LoadInt64(&ran); got != 50 {
		t.Errorf("expected 50 tasks to run before close returned, got %d", got)
	}
	if r.QueueDepth() != 0 {
		t.Errorf("expected empty queue after close, got %d", r.QueueDepth())
	}
}

func TestEnqueueAfterCloseIsDropped(t *testing.T) {
	r := NewRunner(1, zerolog.Nop())
	r.Close()
	if r.Enqueue("late", func() error { return nil }) {
		t.Error("expected enqueue to report drop after close")
	}
	if r.Healthy() {
		t.Error("closed runner reported healthy")
	}
}

func TestPanickingTaskDoesNotKillWorker(t *testing.T) {
	r := NewRunner(1, zerolog.Nop())
	defer r.Close()

	r.Enqueue("bad", func() error { panic("boom") })

	done := make(chan struct{})
	r.Enqueue("good", func() error {
		close(done)
		return nil
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive panicking task")
	}
}

func TestFIFOOrderWithSingleWorker(t *testing.T) {
	r := NewRunner(1, zerolog.Nop())

	var mu sync.Mutex
	var order []int
	for i := 0; i < 10; i++ {
		i := i
		r.Enqueue("ordered", func() error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}
	r.Close()
	for i, v := range order {
		if v != i {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}
