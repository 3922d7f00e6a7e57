package exporters

import (
	"context"

	"github.com/mrlokans/flashmemo/internal/entities"
)

// IndexFileName is the Markdown file holding a category and its flashcards.
const IndexFileName = "index.md"

// CategoryReader is what the exporter needs from the category repository.
type CategoryReader interface {
	GetByID(ctx context.Context, id uint) (*entities.Category, error)
	ListByLevelAndParent(ctx context.Context, level int, parentID *uint, sort entities.SortType) ([]entities.Category, error)
}

// FlashcardReader is what the exporter needs from the flashcard repository.
type FlashcardReader interface {
	ListByCategories(ctx context.Context, categoryIDs []uint) ([]entities.Flashcard, error)
}

type ExportResult struct {
	CategoriesProcessed int    `json:"categories_processed"`
	FlashcardsProcessed int    `json:"flashcards_processed"`
	CategoriesFailed    int    `json:"categories_failed"`
	OutputDir           string `json:"output_dir"`
}

// Frontmatter is the YAML header of an index file.
type Frontmatter struct {
	Name            string  `yaml:"name"`
	Subtitle        *string `yaml:"subtitle,omitempty"`
	Description     *string `yaml:"description,omitempty"`
	ImagePath       *string `yaml:"image_path,omitempty"`
	BackgroundColor string  `yaml:"background_color,omitempty"`
	Frequency       int     `yaml:"frequency,omitempty"`
	ExportedAt      string  `yaml:"exported_at,omitempty"`
}

// CardAttributes are the optional per-flashcard settings written in an HTML
// comment under the prompt heading.
type CardAttributes struct {
	BackgroundColor string  `yaml:"background_color,omitempty"`
	Frequency       int     `yaml:"frequency,omitempty"`
	ImagePath       *string `yaml:"image_path,omitempty"`
}

// IsZero reports whether the attributes carry nothing beyond the defaults.
func (a CardAttributes) IsZero() bool {
	return (a.BackgroundColor == "" || a.BackgroundColor == entities.DefaultBackgroundColor) &&
		a.Frequency == 0 && a.ImagePath == nil
}
