package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/flashmemo/internal/importers"
)

// DeckImporter saves converted decks.
type DeckImporter interface {
	Import(ctx context.Context, converter importers.Converter, parentID *uint) (importers.ImportResult, error)
}

// ImportDeckTask imports a Markdown deck directory under ParentID, or as
// new root categories when ParentID is nil.
type ImportDeckTask struct {
	Dir      string `json:"dir"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// Config returns the queue configuration for deck imports.
// Imports are not idempotent, so they are never retried.
func (t ImportDeckTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_deck",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportDeckProcessor creates a processor function for ImportDeckTask.
func ImportDeckProcessor(importer DeckImporter) backlite.QueueProcessor[ImportDeckTask] {
	return func(ctx context.Context, task ImportDeckTask) error {
		if importer == nil {
			return fmt.Errorf("deck importer not configured")
		}
		if task.Dir == "" {
			return fmt.Errorf("import deck: dir is required")
		}

		result, err := importer.Import(ctx, importers.NewMarkdownConverter(task.Dir), task.ParentID)
		if err != nil {
			return fmt.Errorf("import deck from %s: %w", task.Dir, err)
		}

		log.Printf("[TASK] Imported %d categories and %d flashcards from %s",
			result.CategoriesImported, result.FlashcardsImported, task.Dir)
		return nil
	}
}

// NewImportDeckQueue creates a backlite queue for deck imports.
func NewImportDeckQueue(importer DeckImporter) backlite.Queue {
	return backlite.NewQueue(ImportDeckProcessor(importer))
}
