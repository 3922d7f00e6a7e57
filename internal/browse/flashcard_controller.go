package browse

import (
	"context"

	"github.com/mrlokans/flashmemo/internal/entities"
	"github.com/mrlokans/flashmemo/internal/live"
)

type FlashcardStore interface {
	Insert(ctx context.Context, flashcard *entities.Flashcard) (bool, error)
	Update(ctx context.Context, flashcard entities.Flashcard) error
	Delete(ctx context.Context, flashcard entities.Flashcard) error
	WatchDetail(ctx context.Context, id uint) <-chan live.Result[*entities.Flashcard]
	WatchByLevelAndParent(ctx context.Context, level int, parentID *uint, sort entities.SortType) <-chan live.Result[[]entities.Flashcard]
}

// FlashcardController is the flashcard counterpart of CategoryController.
type FlashcardController struct {
	Flashcards *Observable[[]entities.Flashcard]
	Selected   *Observable[*entities.Flashcard]

	store      FlashcardStore
	dispatcher *Dispatcher
	ctx        context.Context
	cancel     context.CancelFunc
	list       slot
	detail     slot
}

func NewFlashcardController(store FlashcardStore, dispatcher *Dispatcher) *FlashcardController {
	if dispatcher == nil {
		dispatcher = NewDispatcher(context.Background())
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &FlashcardController{
		Flashcards: NewObservable[[]entities.Flashcard](nil),
		Selected:   NewObservable[*entities.Flashcard](nil),
		store:      store,
		dispatcher: dispatcher,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// LoadFlashcards makes Flashcards follow the flashcards at level owned by
// parentID (any owner when nil), replacing any earlier feed. Flashcards
// reads nil until the new feed delivers.
func (c *FlashcardController) LoadFlashcards(sort entities.SortType, level int, parentID *uint) {
	ctx, generation := c.list.replace(c.ctx)
	c.list.publish(generation, func() { c.Flashcards.Set(nil) })
	feed := c.store.WatchByLevelAndParent(ctx, level, parentID, sort)
	follow(&c.list, generation, feed, c.Flashcards, "flashcards")
}

func (c *FlashcardController) GetDetail(id uint) {
	ctx, generation := c.detail.replace(c.ctx)
	feed := c.store.WatchDetail(ctx, id)
	follow(&c.detail, generation, feed, c.Selected, "flashcard detail")
}

func (c *FlashcardController) Insert(flashcard entities.Flashcard) {
	c.dispatcher.Go("insert flashcard", func(ctx context.Context) error {
		_, err := c.store.Insert(ctx, &flashcard)
		return err
	})
}

func (c *FlashcardController) Update(flashcard entities.Flashcard) {
	c.dispatcher.Go("update flashcard", func(ctx context.Context) error {
		return c.store.Update(ctx, flashcard)
	})
}

func (c *FlashcardController) Delete(flashcard entities.Flashcard) {
	c.dispatcher.Go("delete flashcard", func(ctx context.Context) error {
		return c.store.Delete(ctx, flashcard)
	})
}

func (c *FlashcardController) Wait() {
	c.dispatcher.Wait()
}

func (c *FlashcardController) Close() {
	c.list.stop()
	c.detail.stop()
	c.cancel()
}
