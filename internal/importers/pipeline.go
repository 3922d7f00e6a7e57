package importers

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/flashmemo/internal/entities"
	"github.com/mrlokans/flashmemo/internal/utils"
)

// Source describes where a batch of decks came from.
type Source struct {
	Name string
	Path string
}

// Converter transforms an import source into deck trees.
//
// Implementations:
//   - MarkdownConverter (markdown.go) - directories written by the Markdown exporter
type Converter interface {
	Convert() ([]entities.Deck, Source, error)
}

// CategoryWriter is what the pipeline needs from the category repository.
type CategoryWriter interface {
	Insert(ctx context.Context, category *entities.Category) (bool, error)
	GetByID(ctx context.Context, id uint) (*entities.Category, error)
}

// FlashcardWriter is what the pipeline needs from the flashcard repository.
type FlashcardWriter interface {
	Insert(ctx context.Context, flashcard *entities.Flashcard) (bool, error)
}

type ImportResult struct {
	CategoriesImported int `json:"categories_imported"`
	FlashcardsImported int `json:"flashcards_imported"`
	CategoriesFailed   int `json:"categories_failed"`
	FlashcardsFailed   int `json:"flashcards_failed"`
}

// Pipeline saves deck trees through the repositories.
type Pipeline struct {
	categories CategoryWriter
	flashcards FlashcardWriter
}

// NewPipeline creates a new import pipeline over the given repositories.
func NewPipeline(categories CategoryWriter, flashcards FlashcardWriter) *Pipeline {
	return &Pipeline{categories: categories, flashcards: flashcards}
}

// Import converts the source and attaches the decks under parentID, or as
// root categories when parentID is nil.
func (p *Pipeline) Import(ctx context.Context, converter Converter, parentID *uint) (ImportResult, error) {
	decks, source, err := converter.Convert()
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to read %s: %w", source.Name, err)
	}

	result, err := p.ImportDecks(ctx, decks, parentID)
	if err != nil {
		return result, err
	}

	log.Printf("Imported %d categories and %d flashcards from %s (%s); %d categories and %d flashcards failed",
		result.CategoriesImported, result.FlashcardsImported, source.Name, source.Path,
		result.CategoriesFailed, result.FlashcardsFailed)
	return result, nil
}

// ImportDecks attaches already converted decks under parentID.
func (p *Pipeline) ImportDecks(ctx context.Context, decks []entities.Deck, parentID *uint) (ImportResult, error) {
	result := ImportResult{}
	if len(decks) == 0 {
		return result, nil
	}

	level := 1
	if parentID != nil {
		parent, err := p.categories.GetByID(ctx, *parentID)
		if err != nil {
			return result, fmt.Errorf("failed to load parent category %d: %w", *parentID, err)
		}
		if parent == nil {
			return result, fmt.Errorf("parent category %d not found", *parentID)
		}
		level = parent.ChildLevel()
	}

	for _, deck := range decks {
		if err := p.importDeck(ctx, deck, level, parentID, &result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (p *Pipeline) importDeck(ctx context.Context, deck entities.Deck, level int, parentID *uint, result *ImportResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	category := deck.Category
	category.ID = 0
	category.CategoryLevel = level
	category.CategoryID = parentID
	category.BackgroundColor = normalizeColor(category.BackgroundColor, category.Name)

	if _, err := p.categories.Insert(ctx, &category); err != nil {
		log.Printf("Failed to import category %q: %v", category.Name, err)
		result.CategoriesFailed += deck.CountCategories()
		result.FlashcardsFailed += deck.CountFlashcards()
		return nil
	}
	result.CategoriesImported++

	for _, flashcard := range deck.Flashcards {
		flashcard.ID = 0
		flashcard.CategoryID = category.ID
		flashcard.CategoryLevel = category.ChildLevel()
		flashcard.BackgroundColor = normalizeColor(flashcard.BackgroundColor, flashcard.Name)

		if _, err := p.flashcards.Insert(ctx, &flashcard); err != nil {
			log.Printf("Failed to import flashcard %q: %v", flashcard.Name, err)
			result.FlashcardsFailed++
			continue
		}
		result.FlashcardsImported++
	}

	id := category.ID
	for _, child := range deck.Children {
		if err := p.importDeck(ctx, child, category.ChildLevel(), &id, result); err != nil {
			return err
		}
	}
	return nil
}

func normalizeColor(color, owner string) string {
	normalized, err := utils.NormalizeColor(color)
	if err != nil {
		log.Printf("Replacing background color of %q: %v", owner, err)
		return entities.DefaultBackgroundColor
	}
	return normalized
}
