// Package notify fans state snapshots out to subscribers.
package notify

import (
	"sort"
	"sync"
)

// Hub delivers values to subscribers in subscription order.
// The zero value is ready to use.
type Hub[T any] struct {
	mu   sync.Mutex
	subs map[int]func(T)
	next int
}

// Subscribe registers fn; the returned func unregisters it.
func (h *Hub[T]) Subscribe(fn func(T)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[int]func(T))
	}
	id := h.next
	h.next++
	h.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Publish calls every subscriber on the caller's goroutine.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, h.subs[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
