package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/flashmemo/internal/entities"
)

func TestDeckParser(t *testing.T) {
	parser := NewDeckParser()

	t.Run("ParseDir", func(t *testing.T) {
		decks, result, err := parser.ParseDir("../fixtures/decks")
		require.NoError(t, err)

		require.Len(t, decks, 2)
		assert.Equal(t, "Art", decks[0].Category.Name)
		assert.Equal(t, "Languages", decks[1].Category.Name)

		assert.Equal(t, 4, result.CategoriesProcessed)
		assert.Equal(t, 5, result.FlashcardsProcessed)
		assert.Equal(t, 0, result.CategoriesFailed)

		languages := decks[1]
		assert.Equal(t, "#FFE0F7FA", languages.Category.BackgroundColor)
		assert.Equal(t, 3, languages.Category.Frequency)
		require.NotNil(t, languages.Category.Subtitle)
		assert.Equal(t, "Programming and spoken", *languages.Category.Subtitle)
		assert.Empty(t, languages.Flashcards)
		require.Len(t, languages.Children, 2)
		assert.Equal(t, 3, languages.CountCategories())
		assert.Equal(t, 4, languages.CountFlashcards())
	})

	t.Run("ParseIndexFile with attributes", func(t *testing.T) {
		deck, err := parser.ParseIndexFile("../fixtures/decks/Languages/Go/index.md")
		require.NoError(t, err)

		assert.Equal(t, "Go", deck.Category.Name)
		require.NotNil(t, deck.Category.Description)
		assert.Equal(t, "The Go programming language", *deck.Category.Description)
		assert.Equal(t, entities.DefaultBackgroundColor, deck.Category.BackgroundColor)

		require.Len(t, deck.Flashcards, 2)
		first := deck.Flashcards[0]
		assert.Equal(t, "What does the go statement start?", first.Name)
		assert.Equal(t, "A goroutine, a function executing concurrently\nin the same address space.", first.ConclusionText)
		assert.Equal(t, "#FFF59D", first.BackgroundColor)
		assert.Equal(t, 4, first.Frequency)

		second := deck.Flashcards[1]
		assert.Equal(t, "nil", second.ConclusionText)
		assert.Equal(t, entities.DefaultBackgroundColor, second.BackgroundColor)
		assert.Zero(t, second.Frequency)
	})

	t.Run("ParseIndexFile without frontmatter", func(t *testing.T) {
		deck, err := parser.ParseIndexFile("../fixtures/decks/Languages/Spanish/index.md")
		require.NoError(t, err)

		assert.Equal(t, "Spanish", deck.Category.Name)
		require.Len(t, deck.Flashcards, 2)
		assert.Equal(t, "hola", deck.Flashcards[0].Name)
		assert.Equal(t, "hello", deck.Flashcards[0].ConclusionText)
	})

	t.Run("ParseDir on a single deck", func(t *testing.T) {
		decks, result, err := parser.ParseDir("../fixtures/decks/Languages/Go")
		require.NoError(t, err)
		require.Len(t, decks, 1)
		assert.Equal(t, "Go", decks[0].Category.Name)
		assert.Equal(t, 1, result.CategoriesProcessed)
	})

	t.Run("ParseDir on missing directory", func(t *testing.T) {
		_, _, err := parser.ParseDir("../fixtures/does-not-exist")
		assert.Error(t, err)
	})
}

func TestDeckParser_BrokenIndexSkipsSubtree(t *testing.T) {
	root := t.TempDir()
	broken := filepath.Join(root, "Broken")
	require.NoError(t, os.MkdirAll(filepath.Join(broken, "Child"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, "index.md"), []byte("---\nname: [unclosed\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(broken, "Child", "index.md"), []byte("# Child\n"), 0644))

	fine := filepath.Join(root, "Plain")
	require.NoError(t, os.MkdirAll(fine, 0755))

	decks, result, err := NewDeckParser().ParseDir(root)
	require.NoError(t, err)

	require.Len(t, decks, 1)
	assert.Equal(t, "Plain", decks[0].Category.Name, "directories without an index are named after the folder")
	assert.Equal(t, 1, result.CategoriesFailed)
	assert.Equal(t, 1, result.CategoriesProcessed)
}

func TestParse_EmptyFrontmatter(t *testing.T) {
	deck, err := NewDeckParser().Parse([]byte("---\n---\n# Misc\n\n## q\n\na\n"))
	require.NoError(t, err)
	assert.Equal(t, "Misc", deck.Category.Name)
	require.Len(t, deck.Flashcards, 1)
	assert.Equal(t, "a", deck.Flashcards[0].ConclusionText)
}
