package exporters

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/flashmemo/internal/database"
	"github.com/mrlokans/flashmemo/internal/entities"
)

func setupExporter(t *testing.T) (*database.Database, *MarkdownExporter) {
	t.Helper()
	db, err := database.NewDatabaseWithOptions(filepath.Join(t.TempDir(), "export.db"), database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	exporter := NewMarkdownExporter(db.Categories(), db.Flashcards(), filepath.Join(t.TempDir(), "out"))
	exporter.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return db, exporter
}

func seedTree(t *testing.T, db *database.Database) (*entities.Category, *entities.Category) {
	t.Helper()
	ctx := context.Background()

	description := "Programming languages"
	languages := &entities.Category{Name: "Languages", Description: &description, CategoryLevel: 1, BackgroundColor: "#FFFFFF"}
	_, err := db.Categories().Insert(ctx, languages)
	require.NoError(t, err)

	golang := &entities.Category{Name: "Go: the language", CategoryLevel: 2, CategoryID: &languages.ID, BackgroundColor: "#FFFFFF"}
	_, err = db.Categories().Insert(ctx, golang)
	require.NoError(t, err)

	_, err = db.Flashcards().Insert(ctx, &entities.Flashcard{
		Name: "What does the go statement start?", ConclusionText: "A goroutine",
		CategoryLevel: 3, CategoryID: golang.ID, BackgroundColor: "#FFF59D", Frequency: 4,
	})
	require.NoError(t, err)
	_, err = db.Flashcards().Insert(ctx, &entities.Flashcard{
		Name: "Zero value of a map?", ConclusionText: "nil",
		CategoryLevel: 3, CategoryID: golang.ID, BackgroundColor: "#FFFFFF",
	})
	require.NoError(t, err)

	return languages, golang
}

func TestMarkdownExporter_ExportAll(t *testing.T) {
	db, exporter := setupExporter(t)
	seedTree(t, db)

	result, err := exporter.ExportAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.CategoriesProcessed)
	assert.Equal(t, 2, result.FlashcardsProcessed)
	assert.Equal(t, 0, result.CategoriesFailed)

	rootIndex, err := os.ReadFile(filepath.Join(exporter.OutputDir, "Languages", IndexFileName))
	require.NoError(t, err)
	assert.Contains(t, string(rootIndex), "name: Languages\n")
	assert.Contains(t, string(rootIndex), "exported_at:")
	assert.Contains(t, string(rootIndex), "2026-03-01")
	assert.Contains(t, string(rootIndex), "# Languages\n\nProgramming languages\n")

	// Colons are not allowed in directory names.
	childIndex, err := os.ReadFile(filepath.Join(exporter.OutputDir, "Languages", "Go the language", IndexFileName))
	require.NoError(t, err)
	content := string(childIndex)
	assert.Contains(t, content, "## What does the go statement start?\n\n"+CardCommentPrefix+"{")
	assert.Contains(t, content, "'#FFF59D'")
	assert.Contains(t, content, "frequency: 4} -->\n\nA goroutine\n")
	assert.Contains(t, content, "## Zero value of a map?\n\nnil\n")
}

func TestMarkdownExporter_ExportCategory(t *testing.T) {
	db, exporter := setupExporter(t)
	_, golang := seedTree(t, db)

	result, err := exporter.ExportCategory(context.Background(), golang.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CategoriesProcessed)

	_, err = os.Stat(filepath.Join(exporter.OutputDir, "Go the language", IndexFileName))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(exporter.OutputDir, "Languages"))
	assert.True(t, os.IsNotExist(err))

	_, err = exporter.ExportCategory(context.Background(), 999)
	assert.Error(t, err)
}

func TestMarkdownExporter_SiblingNameCollision(t *testing.T) {
	db, exporter := setupExporter(t)
	ctx := context.Background()

	for _, name := range []string{"Notes", "Notes?"} {
		_, err := db.Categories().Insert(ctx, &entities.Category{Name: name, CategoryLevel: 1, BackgroundColor: "#FFFFFF"})
		require.NoError(t, err)
	}

	result, err := exporter.ExportAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.CategoriesProcessed)

	_, err = os.Stat(filepath.Join(exporter.OutputDir, "Notes", IndexFileName))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(exporter.OutputDir, "Notes (2)", IndexFileName))
	assert.NoError(t, err)
}

func TestCardAttributes_IsZero(t *testing.T) {
	assert.True(t, CardAttributes{}.IsZero())
	assert.True(t, CardAttributes{BackgroundColor: entities.DefaultBackgroundColor}.IsZero())
	assert.False(t, CardAttributes{Frequency: 1}.IsZero())
	assert.False(t, CardAttributes{BackgroundColor: "#000000"}.IsZero())
}
