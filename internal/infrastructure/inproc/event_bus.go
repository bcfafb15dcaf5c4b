// Package inproc provides an event bus for single process deployments.
package inproc

import (
	"context"
	"sync"

	"jobtrack/internal/core/ports"
	"jobtrack/internal/domain"
)

// Ensure EventBus implements ports.EventBus at compile time.
var _ ports.EventBus = (*EventBus)(nil)

// EventBus fans every event out to all live subscribers. A subscriber
// whose buffer is full misses events rather than blocking publishers.
type EventBus struct {
	mu     sync.RWMutex
	subs   map[chan domain.Event]struct{}
	buffer int
}

func NewEventBus(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = 64
	}
	return &EventBus{subs: make(map[chan domain.Event]struct{}), buffer: buffer}
}

func (b *EventBus) Publish(_ context.Context, event domain.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel closed once ctx is done.
func (b *EventBus) Subscribe(ctx context.Context) (<-chan domain.Event, error) {
	ch := make(chan domain.Event, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}

// Subscribers is the number of open subscriptions.
func (b *EventBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
