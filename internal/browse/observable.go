package browse

import (
	"context"
	"sync"
)

// Observable holds a current value and pushes every change to its watchers.
// Watchers only ever see the latest value; intermediate values may be skipped
// if a watcher reads slower than the value changes.
type Observable[T any] struct {
	mu       sync.RWMutex
	value    T
	watchers map[uint64]chan T
	nextID   uint64
}

// NewObservable creates an Observable holding initial.
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{
		value:    initial,
		watchers: make(map[uint64]chan T),
	}
}

// Get returns the current value.
func (o *Observable[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

// Set replaces the current value and notifies watchers.
func (o *Observable[T]) Set(value T) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.value = value
	for _, ch := range o.watchers {
		offerLatest(ch, value)
	}
}

// Watch returns a channel that first yields the current value and then every
// later one. The channel is closed when ctx is done.
func (o *Observable[T]) Watch(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.watchers[id] = ch
	ch <- o.value
	o.mu.Unlock()

	go func() {
		<-ctx.Done()
		o.mu.Lock()
		delete(o.watchers, id)
		close(ch)
		o.mu.Unlock()
	}()

	return ch
}

// offerLatest puts value in a one-slot channel, replacing whatever the
// reader has not picked up yet. Callers hold the observable's lock.
func offerLatest[T any](ch chan T, value T) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- value:
	default:
	}
}
