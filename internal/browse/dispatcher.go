package browse

import (
	"context"
	"log"
	"sync"
)

// ErrorHandler receives failures from dispatched operations.
type ErrorHandler func(op string, err error)

// Dispatcher runs fire-and-forget operations in the background.
// Failed operations are logged and passed to the optional error handler.
type Dispatcher struct {
	ctx     context.Context
	wg      sync.WaitGroup
	onError ErrorHandler
}

// NewDispatcher creates a dispatcher whose operations run with ctx.
func NewDispatcher(ctx context.Context) *Dispatcher {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Dispatcher{ctx: ctx}
}

// OnError installs a handler invoked for every failed operation.
func (d *Dispatcher) OnError(handler ErrorHandler) {
	d.onError = handler
}

// Go runs fn on its own goroutine.
func (d *Dispatcher) Go(op string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := fn(d.ctx); err != nil {
			log.Printf("[BROWSE] %s failed: %v", op, err)
			if d.onError != nil {
				d.onError(op, err)
			}
		}
	}()
}

// Wait blocks until every dispatched operation has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
