package importers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/flashmemo/internal/database"
	"github.com/mrlokans/flashmemo/internal/entities"
)

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewDatabaseWithOptions(filepath.Join(t.TempDir(), "import.db"), database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type failingConverter struct{}

func (failingConverter) Convert() ([]entities.Deck, Source, error) {
	return nil, Source{Name: "broken"}, errors.New("unreadable")
}

func TestPipeline_ImportMarkdownFixtures(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	pipeline := NewPipeline(db.Categories(), db.Flashcards())

	result, err := pipeline.Import(ctx, NewMarkdownConverter("../fixtures/decks"), nil)
	require.NoError(t, err)

	assert.Equal(t, 4, result.CategoriesImported)
	assert.Equal(t, 5, result.FlashcardsImported)
	assert.Zero(t, result.CategoriesFailed)

	roots, err := db.Categories().ListByLevelAndParent(ctx, 1, nil, entities.SortNameAsc)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "Art", roots[0].Name)
	assert.Equal(t, "Languages", roots[1].Name)
	assert.Equal(t, "#FFE0F7FA", roots[1].BackgroundColor)

	languagesID := roots[1].ID
	children, err := db.Categories().ListByLevelAndParent(ctx, 2, &languagesID, entities.SortNameAsc)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "Go", children[0].Name)

	goID := children[0].ID
	cards, err := db.Flashcards().ListByLevelAndParent(ctx, 3, &goID, entities.SortFrequencyDesc)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "What does the go statement start?", cards[0].Name)
	assert.Equal(t, 4, cards[0].Frequency)
}

func TestPipeline_ImportUnderParent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	pipeline := NewPipeline(db.Categories(), db.Flashcards())

	school := &entities.Category{Name: "School", CategoryLevel: 1, BackgroundColor: "#FFFFFF"}
	_, err := db.Categories().Insert(ctx, school)
	require.NoError(t, err)

	decks := []entities.Deck{{
		// IDs and levels in the deck are ignored.
		Category: entities.Category{ID: 77, Name: "Maths", CategoryLevel: 9, BackgroundColor: "ffcc00"},
		Flashcards: []entities.Flashcard{
			{ID: 5, Name: "2+2", ConclusionText: "4", BackgroundColor: "not a color"},
		},
	}}

	result, err := pipeline.ImportDecks(ctx, decks, &school.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CategoriesImported)
	assert.Equal(t, 1, result.FlashcardsImported)

	maths, err := db.Categories().ListByLevelAndParent(ctx, 2, &school.ID, entities.SortNameAsc)
	require.NoError(t, err)
	require.Len(t, maths, 1)
	assert.NotEqual(t, uint(77), maths[0].ID)
	assert.Equal(t, "#FFCC00", maths[0].BackgroundColor)

	cards, err := db.Flashcards().ListByCategories(ctx, []uint{maths[0].ID})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 3, cards[0].CategoryLevel)
	assert.Equal(t, entities.DefaultBackgroundColor, cards[0].BackgroundColor)
}

func TestPipeline_MissingParent(t *testing.T) {
	db := setupTestDB(t)
	pipeline := NewPipeline(db.Categories(), db.Flashcards())

	missing := uint(404)
	_, err := pipeline.ImportDecks(context.Background(), []entities.Deck{{Category: entities.Category{Name: "X"}}}, &missing)
	assert.Error(t, err)
}

func TestPipeline_EmptyInputAndConverterErrors(t *testing.T) {
	db := setupTestDB(t)
	pipeline := NewPipeline(db.Categories(), db.Flashcards())

	result, err := pipeline.ImportDecks(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{}, result)

	_, err = pipeline.Import(context.Background(), failingConverter{}, nil)
	assert.Error(t, err)
}
