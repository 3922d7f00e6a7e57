// Package browse holds the state that a presentation layer renders while a
// user walks the category tree.
//
// Controllers turn repository live feeds into Observables. Each state slot
// (the list, the selected detail) follows exactly one feed at a time: a new
// Load or GetDetail cancels the previous subscription before starting the
// next, and a generation number discards anything the cancelled feed still
// had in flight. Mutations run on a Dispatcher and never block the caller;
// their effects reach the observables through the live feeds.
//
//	nav := browse.NewNavigator()
//	cats := browse.NewCategoryController(db.Categories(), nil)
//	defer cats.Close()
//
//	loc := nav.Current()
//	cats.LoadCategories(entities.SortNameAsc, loc.Level, loc.ParentID)
//	for list := range cats.Categories.Watch(ctx) {
//		render(list)
//	}
package browse
