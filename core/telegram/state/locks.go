package state

import "sync"

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// Locks serializes work per Key. Distinct keys never wait on each other.
type Locks struct {
	mu    sync.Mutex
	locks map[Key]*keyLock
}

// NewLocks returns an empty lock table.
func NewLocks() *Locks {
	return &Locks{locks: make(map[Key]*keyLock)}
}

// Lock blocks until key is free and returns the matching unlock function.
func (l *Locks) Lock(key Key) (unlock func()) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *Locks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
