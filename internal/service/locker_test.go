package service

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestLocker_Exclusive(t *testing.T) {
	t.Parallel()

	l := NewLocker()
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("w1")
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	if got := maxInside.Load(); got != 1 {
		t.Errorf("max holders = %d, want 1", got)
	}
}

func TestLocker_IndependentKeysAndCleanup(t *testing.T) {
	t.Parallel()

	l := NewLocker()
	unlockA := l.Lock("a")
	// A different key must not block.
	unlockB := l.Lock("b")
	unlockB()
	unlockA()

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.locks) != 0 {
		t.Errorf("locks not released: %d entries", len(l.locks))
	}
}
