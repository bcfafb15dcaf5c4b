package service

import "sync"

// Locker hands out one mutex per workflow id. Entries are dropped once no
// goroutine holds or waits for them.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*refMutex)}
}

// Lock blocks until the workflow's mutex is held and returns its unlock func.
func (l *Locker) Lock(workflowID string) func() {
	l.mu.Lock()
	m, ok := l.locks[workflowID]
	if !ok {
		m = &refMutex{}
		l.locks[workflowID] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, workflowID)
		}
		l.mu.Unlock()
	}
}
