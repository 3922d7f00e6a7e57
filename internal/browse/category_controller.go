package browse

import (
	"context"

	"github.com/mrlokans/flashmemo/internal/entities"
	"github.com/mrlokans/flashmemo/internal/live"
)

// CategoryStore is the subset of the category repository the controller uses.
type CategoryStore interface {
	Insert(ctx context.Context, category *entities.Category) (bool, error)
	Update(ctx context.Context, category entities.Category) error
	Delete(ctx context.Context, category entities.Category) error
	GetByID(ctx context.Context, id uint) (*entities.Category, error)
	WatchDetail(ctx context.Context, id uint) <-chan live.Result[*entities.Category]
	WatchByLevelAndParent(ctx context.Context, level int, parentID *uint, sort entities.SortType) <-chan live.Result[[]entities.Category]
}

// CategoryController exposes the category list and the selected category
// as observables fed by live repository queries. Categories holds nil until
// the first list has been loaded.
type CategoryController struct {
	Categories *Observable[[]entities.Category]
	Selected   *Observable[*entities.Category]

	store      CategoryStore
	dispatcher *Dispatcher
	ctx        context.Context
	cancel     context.CancelFunc
	list       slot
	detail     slot
}

// NewCategoryController creates a controller over store. Mutations run on
// dispatcher; a nil dispatcher gets a private one.
func NewCategoryController(store CategoryStore, dispatcher *Dispatcher) *CategoryController {
	if dispatcher == nil {
		dispatcher = NewDispatcher(context.Background())
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CategoryController{
		Categories: NewObservable[[]entities.Category](nil),
		Selected:   NewObservable[*entities.Category](nil),
		store:      store,
		dispatcher: dispatcher,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// LoadCategories makes Categories follow the categories at level under
// parentID (any parent when nil) in the given order. It replaces the feed
// started by any earlier call. Categories reads nil until the new feed
// delivers its first snapshot.
func (c *CategoryController) LoadCategories(sort entities.SortType, level int, parentID *uint) {
	ctx, generation := c.list.replace(c.ctx)
	c.list.publish(generation, func() { c.Categories.Set(nil) })
	feed := c.store.WatchByLevelAndParent(ctx, level, parentID, sort)
	follow(&c.list, generation, feed, c.Categories, "categories")
}

// GetDetail makes Selected follow the category with the given ID.
// Selected becomes nil if the category does not exist or is deleted.
func (c *CategoryController) GetDetail(id uint) {
	ctx, generation := c.detail.replace(c.ctx)
	feed := c.store.WatchDetail(ctx, id)
	follow(&c.detail, generation, feed, c.Selected, "category detail")
}

// GetParent fetches the category with parentID once and hands it to callback
// from a background goroutine. The category is nil when it does not exist.
func (c *CategoryController) GetParent(parentID uint, callback func(*entities.Category, error)) {
	c.dispatcher.Go("get parent category", func(ctx context.Context) error {
		parent, err := c.store.GetByID(ctx, parentID)
		callback(parent, err)
		return err
	})
}

// Insert stores category in the background.
func (c *CategoryController) Insert(category entities.Category) {
	c.dispatcher.Go("insert category", func(ctx context.Context) error {
		_, err := c.store.Insert(ctx, &category)
		return err
	})
}

// Update replaces category in the background.
func (c *CategoryController) Update(category entities.Category) {
	c.dispatcher.Go("update category", func(ctx context.Context) error {
		return c.store.Update(ctx, category)
	})
}

// Delete removes category, its subtree and their flashcards in the background.
func (c *CategoryController) Delete(category entities.Category) {
	c.dispatcher.Go("delete category", func(ctx context.Context) error {
		return c.store.Delete(ctx, category)
	})
}

// Wait blocks until dispatched mutations have finished.
func (c *CategoryController) Wait() {
	c.dispatcher.Wait()
}

// Close stops every live feed. Observables keep their last values.
func (c *CategoryController) Close() {
	c.list.stop()
	c.detail.stop()
	c.cancel()
}
