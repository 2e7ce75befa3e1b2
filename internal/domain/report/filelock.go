package report

import "sync"

// lockRegistry hands out one mutex per file path so writes, backups, and
// deletes of the same report serialize while different files proceed in
// parallel. Entries are never evicted: the registry grows with the number of
// distinct paths ever touched, which is bounded by the report naming scheme
// and acceptable for this workload.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex for path, creating it on first use.
func (r *lockRegistry) get(path string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[path]
	if !ok {
		l = &sync.Mutex{}
		r.locks[path] = l
	}
	return l
}

// size returns the number of registered locks.
func (r *lockRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}
