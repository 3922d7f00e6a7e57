package live

import (
	"context"
)

// Result is one snapshot of a live query.
type Result[T any] struct {
	Value T
	Err   error
}

// FetchFunc runs the query backing a live feed.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Watch runs fetch once immediately and again after every change to one of
// the tables, sending each snapshot on the returned channel. A failed fetch
// is delivered as a Result with Err set and the feed keeps going. The channel
// is closed once ctx is done.
func Watch[T any](ctx context.Context, hub *Hub, fetch FetchFunc[T], tables ...string) <-chan Result[T] {
	out := make(chan Result[T])
	notify, cancel := hub.Subscribe(tables...)

	go func() {
		defer close(out)
		defer cancel()

		for {
			value, err := fetch(ctx)
			if ctx.Err() != nil {
				return
			}

			select {
			case out <- Result[T]{Value: value, Err: err}:
			case <-ctx.Done():
				return
			}

			select {
			case <-notify:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
