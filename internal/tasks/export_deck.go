package tasks

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/flashmemo/internal/exporters"
)

// DeckExporter writes category subtrees to a directory.
type DeckExporter interface {
	ExportAll(ctx context.Context) (exporters.ExportResult, error)
	ExportCategory(ctx context.Context, id uint) (exporters.ExportResult, error)
}

// DeckExporterFactory builds an exporter writing into dir.
type DeckExporterFactory func(dir string) DeckExporter

// ExportDeckTask exports one category subtree, or every root when CategoryID is 0.
type ExportDeckTask struct {
	CategoryID uint   `json:"category_id,omitempty"`
	OutputDir  string `json:"output_dir,omitempty"`
}

// Config returns the queue configuration for deck exports.
func (t ExportDeckTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "export_deck",
		MaxAttempts: 2,
		Backoff:     30 * time.Second,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ExportDeckProcessor creates a processor function for ExportDeckTask.
// Tasks without an output directory write to a timestamped folder under defaultDir.
func ExportDeckProcessor(newExporter DeckExporterFactory, defaultDir string) backlite.QueueProcessor[ExportDeckTask] {
	return func(ctx context.Context, task ExportDeckTask) error {
		if newExporter == nil {
			return fmt.Errorf("deck exporter not configured")
		}

		dir := task.OutputDir
		if dir == "" {
			dir = filepath.Join(defaultDir, time.Now().Format("20060102-150405"))
		}
		exporter := newExporter(dir)

		var result exporters.ExportResult
		var err error
		if task.CategoryID == 0 {
			result, err = exporter.ExportAll(ctx)
		} else {
			result, err = exporter.ExportCategory(ctx, task.CategoryID)
		}
		if err != nil {
			return fmt.Errorf("export deck to %s: %w", dir, err)
		}

		log.Printf("[TASK] Exported %d categories and %d flashcards to %s",
			result.CategoriesProcessed, result.FlashcardsProcessed, dir)
		return nil
	}
}

// NewExportDeckQueue creates a backlite queue for deck exports.
func NewExportDeckQueue(newExporter DeckExporterFactory, defaultDir string) backlite.Queue {
	return backlite.NewQueue(ExportDeckProcessor(newExporter, defaultDir))
}
