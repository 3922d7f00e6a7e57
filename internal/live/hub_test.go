package live

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan Result[T]) Result[T] {
	t.Helper()
	select {
	case r, ok := <-ch:
		require.True(t, ok, "feed closed unexpectedly")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return Result[T]{}
}

func TestHub_PublishNotifiesInterestedSubscribers(t *testing.T) {
	hub := NewHub()

	cats, cancelCats := hub.Subscribe(TableCategories)
	defer cancelCats()
	cards, cancelCards := hub.Subscribe(TableFlashcards)
	defer cancelCards()

	hub.Publish(TableCategories)

	select {
	case <-cats:
	default:
		t.Fatal("categories subscriber was not notified")
	}

	select {
	case <-cards:
		t.Fatal("flashcards subscriber should not be notified")
	default:
	}
}

func TestHub_PublishCoalesces(t *testing.T) {
	hub := NewHub()
	notify, cancel := hub.Subscribe(TableCategories)
	defer cancel()

	for i := 0; i < 10; i++ {
		hub.Publish(TableCategories)
	}

	<-notify
	select {
	case <-notify:
		t.Fatal("expected a single pending notification")
	default:
	}
}

func TestHub_CancelRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe(TableCategories, TableFlashcards)
	assert.Equal(t, 1, hub.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, hub.Subscribers())
}

func TestWatch_EmitsInitialAndUpdatedSnapshots(t *testing.T) {
	hub := NewHub()
	var counter atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := Watch(ctx, hub, func(ctx context.Context) (int32, error) {
		return counter.Load(), nil
	}, TableFlashcards)

	first := receive(t, feed)
	require.NoError(t, first.Err)
	assert.Equal(t, int32(0), first.Value)

	counter.Store(7)
	hub.Publish(TableFlashcards)

	second := receive(t, feed)
	assert.Equal(t, int32(7), second.Value)
}

func TestWatch_DeliversErrorsAndContinues(t *testing.T) {
	hub := NewHub()
	var calls atomic.Int32
	boom := errors.New("boom")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := Watch(ctx, hub, func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", boom
		}
		return "ok", nil
	}, TableCategories)

	first := receive(t, feed)
	assert.ErrorIs(t, first.Err, boom)

	hub.Publish(TableCategories)
	second := receive(t, feed)
	require.NoError(t, second.Err)
	assert.Equal(t, "ok", second.Value)
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	feed := Watch(ctx, hub, func(ctx context.Context) (int, error) {
		return 1, nil
	}, TableCategories)

	receive(t, feed)
	cancel()

	select {
	case _, ok := <-feed:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("feed was not closed after cancel")
	}

	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}
