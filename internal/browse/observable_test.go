package browse

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservable_GetSet(t *testing.T) {
	o := NewObservable(1)
	assert.Equal(t, 1, o.Get())

	o.Set(2)
	assert.Equal(t, 2, o.Get())
}

func TestObservable_WatchDeliversCurrentThenLatest(t *testing.T) {
	o := NewObservable("a")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := o.Watch(ctx)
	assert.Equal(t, "a", <-ch)

	o.Set("b")
	o.Set("c")
	assert.Equal(t, "c", <-ch)
}

func TestObservable_WatchClosesOnCancel(t *testing.T) {
	o := NewObservable(0)
	ctx, cancel := context.WithCancel(context.Background())

	ch := o.Watch(ctx)
	<-ch
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("watch channel was not closed")
	}

	// Setting after the watcher left must not panic.
	o.Set(5)
}

func TestDispatcher_RunsAndReportsErrors(t *testing.T) {
	d := NewDispatcher(context.Background())

	var ran atomic.Int32
	var failed atomic.Value
	d.OnError(func(op string, err error) { failed.Store(op) })

	for i := 0; i < 5; i++ {
		d.Go("count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	d.Go("boom", func(ctx context.Context) error {
		return errors.New("boom")
	})
	d.Wait()

	assert.Equal(t, int32(5), ran.Load())
	require.NotNil(t, failed.Load())
	assert.Equal(t, "boom", failed.Load())
}

func TestSlot_StaleGenerationIsDropped(t *testing.T) {
	var s slot
	_, first := s.replace(context.Background())
	ctx, second := s.replace(context.Background())
	require.NoError(t, ctx.Err())

	applied := 0
	assert.False(t, s.publish(first, func() { applied++ }))
	assert.True(t, s.publish(second, func() { applied++ }))
	assert.Equal(t, 1, applied)

	s.stop()
	assert.Error(t, ctx.Err())
	assert.False(t, s.publish(second, func() { applied++ }))
}
