package browse

import (
	"context"
	"log"
	"sync"

	"github.com/mrlokans/flashmemo/internal/live"
)

// slot is one piece of controller state backed by a single live feed.
type slot struct {
	mu         sync.Mutex
	cancel     context.CancelFunc
	generation uint64
}

// replace cancels the current feed and returns a context and generation
// for its successor.
func (s *slot) replace(parent context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.generation++
	return ctx, s.generation
}

// publish runs apply only while generation is still the live one.
func (s *slot) publish(generation uint64, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return false
	}
	apply()
	return true
}

func (s *slot) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
}

// follow copies snapshots from feed into target until the feed closes.
// Failed snapshots are logged and leave the target untouched.
func follow[T any](s *slot, generation uint64, feed <-chan live.Result[T], target *Observable[T], label string) {
	go func() {
		for result := range feed {
			if result.Err != nil {
				log.Printf("[BROWSE] %s refresh failed: %v", label, result.Err)
				continue
			}
			if !s.publish(generation, func() { target.Set(result.Value) }) {
				return
			}
		}
	}()
}
