package event

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Clearer is implemented by every Bus.
type Clearer interface {
	Name() string
	Clear()
}

// Hub tracks the buses of one session so they can be cleared together at
// teardown.
type Hub struct {
	buses []Clearer
	mu    sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Track adds buses to the hub.
func (h *Hub) Track(buses ...Clearer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buses = append(h.buses, buses...)
}

// Count returns the number of tracked buses.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.buses)
}

// ClearAll removes every handler from every tracked bus.
func (h *Hub) ClearAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, b := range h.buses {
		b.Clear()
	}
	log.Debug().Int("buses", len(h.buses)).Msg("Event hub cleared")
}

// Track creates a bus and registers it with the hub in one step.
func Track[T any](h *Hub, name string) *Bus[T] {
	b := NewBus[T](name)
	h.Track(b)
	return b
}
