// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, change hub
//	├── migrations/      # Hand-written DDL (self-referencing foreign keys)
//	├── categories/      # Category hierarchy CRUD, live queries, tree walks
//	└── flashcards/      # Flashcard CRUD and live queries
//
// # Using Sub-packages
//
// The Database owns a single live.Hub shared by both repositories, so a
// category delete wakes flashcard watchers as well:
//
//	db, err := database.NewDatabase("./flashmemo.db")
//
//	roots, err := db.Categories().ListByLevelAndParent(ctx, 1, nil, entities.SortNameAsc)
//	feed := db.Flashcards().WatchByLevelAndParent(ctx, 2, &roots[0].ID, entities.SortNameAsc)
//
// # Interface Implementations
//
//   - categories.Repository: implements http.CategoryStore and browse.CategoryStore
//   - flashcards.Repository: implements http.FlashcardStore and browse.FlashcardStore
//
// # Adding a New Table
//
//  1. Add the DDL to migrations/schema.go
//  2. Create a sub-package with a Repository holding *gorm.DB and *live.Hub
//  3. Publish the table name after every successful write
//  4. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
