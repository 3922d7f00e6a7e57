package browse

import (
	"sync"

	"github.com/mrlokans/flashmemo/internal/entities"
)

// RootLevel is the level of categories without a parent.
const RootLevel = 1

// Location is one position in the category tree: the level being listed
// and the category that owns it (nil at the root).
type Location struct {
	Level    int   `json:"level"`
	ParentID *uint `json:"parent_id"`
}

// IsRoot reports whether the location is the top-level listing.
func (l Location) IsRoot() bool {
	return l.ParentID == nil
}

// Navigator tracks the path from the root listing to the current location.
type Navigator struct {
	mu    sync.Mutex
	stack []Location
}

// NewNavigator starts at the root listing.
func NewNavigator() *Navigator {
	return &Navigator{stack: []Location{{Level: RootLevel}}}
}

// Current returns the location on top of the stack.
func (n *Navigator) Current() Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stack[len(n.stack)-1]
}

// Open descends into category: the next location lists level+1 under it.
func (n *Navigator) Open(category entities.Category) Location {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := category.ID
	loc := Location{Level: category.CategoryLevel + 1, ParentID: &id}
	n.stack = append(n.stack, loc)
	return loc
}

// Back returns to the previous location. At the root it stays put and
// returns false.
func (n *Navigator) Back() (Location, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.stack) == 1 {
		return n.stack[0], false
	}
	n.stack = n.stack[:len(n.stack)-1]
	return n.stack[len(n.stack)-1], true
}

// Depth is the number of categories opened since the root.
func (n *Navigator) Depth() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.stack) - 1
}

// Path returns a copy of every location from the root to the current one.
func (n *Navigator) Path() []Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	path := make([]Location, len(n.stack))
	copy(path, n.stack)
	return path
}

// Reset goes back to the root listing.
func (n *Navigator) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = n.stack[:1]
}
