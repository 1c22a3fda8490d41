// Package event provides a typed in-process publish/subscribe bus.
// Emission is synchronous and runs handlers in subscription order.
package event

import (
	"sync"
)

// Unit is the payload of events that carry no data.
type Unit struct{}

// Subscription identifies a registered handler so it can be removed later.
type Subscription struct {
	id  uint64
	bus string
}

type handler[T any] struct {
	id uint64
	fn func(T)
}

// Bus delivers payloads of type T to every subscribed handler.
type Bus[T any] struct {
	name     string
	handlers []handler[T]
	nextID   uint64
	mu       sync.RWMutex
}

// NewBus creates a bus with the given name.
// The name only appears in logs and subscriptions.
func NewBus[T any](name string) *Bus[T] {
	return &Bus[T]{name: name}
}

// Name returns the bus name.
func (b *Bus[T]) Name() string {
	return b.name
}

// Subscribe registers a handler. The same function may be subscribed more
// than once; each call returns a distinct subscription.
func (b *Bus[T]) Subscribe(fn func(T)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers = append(b.handlers, handler[T]{id: b.nextID, fn: fn})
	return Subscription{id: b.nextID, bus: b.name}
}

// Unsubscribe removes a handler. Returns false if it was not registered.
func (b *Bus[T]) Unsubscribe(s Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, h := range b.handlers {
		if h.id == s.id {
			b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Emit calls every handler with v. Handlers are snapshotted first, so a
// handler may subscribe, unsubscribe or emit without deadlocking.
func (b *Bus[T]) Emit(v T) {
	b.mu.RLock()
	snapshot := make([]handler[T], len(b.handlers))
	copy(snapshot, b.handlers)
	b.mu.RUnlock()

	for _, h := range snapshot {
		h.fn(v)
	}
}

// Clear removes all handlers.
func (b *Bus[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = nil
}

// Len returns the number of subscribed handlers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
