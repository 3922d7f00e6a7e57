// Package live turns one-shot store queries into continuously updated feeds.
//
// Writers call Hub.Publish with the tables they touched. Every Watch whose
// tables intersect re-runs its query and emits a fresh snapshot, until the
// watcher's context is cancelled.
package live

import (
	"sync"
)

// Table names used as notification topics.
const (
	TableCategories = "categories"
	TableFlashcards = "flashcards"
)

type subscriber struct {
	tables map[string]struct{}
	notify chan struct{}
}

// Hub fans out table-change notifications to subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscriber
	nextID uint64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*subscriber)}
}

// Subscribe registers interest in the given tables. The returned channel
// receives a value after any publish touching one of them; notifications are
// coalesced, so a slow reader sees one wake-up for a burst of writes.
// The cancel function must be called to release the subscription.
func (h *Hub) Subscribe(tables ...string) (<-chan struct{}, func()) {
	sub := &subscriber{
		tables: make(map[string]struct{}, len(tables)),
		notify: make(chan struct{}, 1),
	}
	for _, t := range tables {
		sub.tables[t] = struct{}{}
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
	return sub.notify, cancel
}

// Publish notifies every subscriber interested in any of the tables.
// It never blocks on a subscriber.
func (h *Hub) Publish(tables ...string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if !sub.interested(tables) {
			continue
		}
		select {
		case sub.notify <- struct{}{}:
		default:
			// A wake-up is already pending.
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (s *subscriber) interested(tables []string) bool {
	for _, t := range tables {
		if _, ok := s.tables[t]; ok {
			return true
		}
	}
	return false
}
