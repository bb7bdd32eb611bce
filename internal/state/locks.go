package state

import "sync"

// LockName identifies a process-wide mutual-exclusion lock. The set is
// closed; the same name always resolves to the same mutex.
type LockName string

const (
	ComponentsInstall LockName = "components.install"
	BottleCreate      LockName = "bottle.create"
	CacheWrite        LockName = "cache.write"
)

// LockRegistry is a pool of named mutexes, created lazily and kept for the
// process lifetime. Locks are not reentrant: reacquiring a held name from
// the same goroutine deadlocks.
type LockRegistry struct {
	mu    sync.Mutex
	locks map[LockName]*sync.Mutex
}

func NewLockRegistry() *LockRegistry {
	return &LockRegistry{locks: make(map[LockName]*sync.Mutex)}
}

func (r *LockRegistry) get(name LockName) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[name]
	if !ok {
		l = &sync.Mutex{}
		r.locks[name] = l
	}
	return l
}

// Acquire blocks until the lock for name is free and returns its release
// func. Callers must release on every exit path:
//
//	defer locks.Acquire(state.ComponentsInstall)()
func (r *LockRegistry) Acquire(name LockName) (release func()) {
	l := r.get(name)
	l.Lock()
	return l.Unlock
}

// WithLock runs fn while holding the lock for name.
func (r *LockRegistry) WithLock(name LockName, fn func() error) error {
	defer r.Acquire(name)()
	return fn()
}
