package http

import (
	"github.com/mrlokans/flashmemo/internal/database"
	"github.com/mrlokans/flashmemo/internal/images"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database   *database.Database
	Categories CategoryStore
	Flashcards FlashcardStore
	Importer   DeckImporter

	// Image storage (optional)
	ImageStore *images.Store

	// Deck export
	ExportDir       string
	ExportScheduler ExportScheduler

	// Task queue client (optional)
	TaskClient TaskQueue

	// Application info
	Version string
}
