package browse

import (
	"context"
	"sync"

	"github.com/mrlokans/flashmemo/internal/entities"
)

// LevelSnapshot is everything shown for one location: the owning category,
// and the child categories and flashcards that match the current query.
type LevelSnapshot struct {
	Location   Location             `json:"location"`
	Parent     *entities.Category   `json:"parent"`
	Categories []entities.Category  `json:"categories"`
	Flashcards []entities.Flashcard `json:"flashcards"`
}

// LevelView drives both controllers from a Navigator, the way a levelled
// screen lists child categories and flashcards of one category together.
type LevelView struct {
	Categories *CategoryController
	Flashcards *FlashcardController
	Parent     *Observable[*entities.Category]

	nav   *Navigator
	mu    sync.Mutex
	sort  entities.SortType
	query string
}

// NewLevelView opens the root listing sorted by name.
func NewLevelView(categories CategoryStore, flashcards FlashcardStore, dispatcher *Dispatcher) *LevelView {
	if dispatcher == nil {
		dispatcher = NewDispatcher(context.Background())
	}
	v := &LevelView{
		Categories: NewCategoryController(categories, dispatcher),
		Flashcards: NewFlashcardController(flashcards, dispatcher),
		Parent:     NewObservable[*entities.Category](nil),
		nav:        NewNavigator(),
		sort:       entities.SortNameAsc,
	}
	v.load()
	return v
}

func (v *LevelView) load() {
	loc := v.nav.Current()
	v.mu.Lock()
	sort := v.sort
	v.Parent.Set(nil)
	v.mu.Unlock()

	v.Categories.LoadCategories(sort, loc.Level, loc.ParentID)
	v.Flashcards.LoadFlashcards(sort, loc.Level, loc.ParentID)

	if loc.ParentID == nil {
		return
	}
	parentID := *loc.ParentID
	v.Categories.GetParent(parentID, func(parent *entities.Category, err error) {
		if err != nil {
			return
		}
		v.mu.Lock()
		defer v.mu.Unlock()
		// Ignore answers for a location the user already left.
		if cur := v.nav.Current(); cur.ParentID != nil && *cur.ParentID == parentID {
			v.Parent.Set(parent)
		}
	})
}

// Open descends into category.
func (v *LevelView) Open(category entities.Category) Location {
	loc := v.nav.Open(category)
	v.load()
	return loc
}

// Back returns to the previous level. It reports false at the root.
func (v *LevelView) Back() bool {
	if _, ok := v.nav.Back(); !ok {
		return false
	}
	v.load()
	return true
}

// SetSort reorders both lists.
func (v *LevelView) SetSort(sort entities.SortType) {
	v.mu.Lock()
	v.sort = sort
	v.mu.Unlock()
	v.load()
}

// SetQuery filters both lists by name. The feeds are not restarted.
func (v *LevelView) SetQuery(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = query
}

// Location returns the location currently shown.
func (v *LevelView) Location() Location {
	return v.nav.Current()
}

// Depth is the number of categories opened since the root.
func (v *LevelView) Depth() int {
	return v.nav.Depth()
}

// Path returns the locations from the root to the current one.
func (v *LevelView) Path() []Location {
	return v.nav.Path()
}

// Snapshot returns the current filtered contents of the level.
func (v *LevelView) Snapshot() LevelSnapshot {
	v.mu.Lock()
	query := v.query
	v.mu.Unlock()

	return LevelSnapshot{
		Location:   v.nav.Current(),
		Parent:     v.Parent.Get(),
		Categories: FilterCategories(v.Categories.Categories.Get(), query),
		Flashcards: FilterFlashcards(v.Flashcards.Flashcards.Get(), query),
	}
}

// Loaded reports whether both lists, and the owning category below the
// root, have arrived for the current location.
func (s LevelSnapshot) Loaded() bool {
	if s.Categories == nil || s.Flashcards == nil {
		return false
	}
	if s.Location.IsRoot() {
		return true
	}
	return s.Parent != nil && s.Parent.ID == *s.Location.ParentID
}

// Close stops both controllers' feeds.
func (v *LevelView) Close() {
	v.Categories.Close()
	v.Flashcards.Close()
}
