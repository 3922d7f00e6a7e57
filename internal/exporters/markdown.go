package exporters

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/flashmemo/internal/entities"
	"github.com/mrlokans/flashmemo/internal/utils"
)

// CardCommentPrefix opens the attribute comment under a flashcard heading.
const CardCommentPrefix = "<!-- flashcard "

// MarkdownExporter writes category subtrees as nested directories, one
// index.md per category.
type MarkdownExporter struct {
	categories CategoryReader
	flashcards FlashcardReader
	OutputDir  string
	now        func() time.Time
}

func NewMarkdownExporter(categories CategoryReader, flashcards FlashcardReader, outputDir string) *MarkdownExporter {
	return &MarkdownExporter{
		categories: categories,
		flashcards: flashcards,
		OutputDir:  outputDir,
		now:        time.Now,
	}
}

// ExportAll writes every root category and its subtree.
func (exporter *MarkdownExporter) ExportAll(ctx context.Context) (ExportResult, error) {
	roots, err := exporter.categories.ListByLevelAndParent(ctx, 1, nil, entities.SortNameAsc)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to list root categories: %w", err)
	}
	return exporter.export(ctx, roots)
}

// ExportCategory writes one category and its subtree.
func (exporter *MarkdownExporter) ExportCategory(ctx context.Context, id uint) (ExportResult, error) {
	category, err := exporter.categories.GetByID(ctx, id)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to load category %d: %w", id, err)
	}
	if category == nil {
		return ExportResult{}, fmt.Errorf("category %d not found", id)
	}
	return exporter.export(ctx, []entities.Category{*category})
}

func (exporter *MarkdownExporter) export(ctx context.Context, categories []entities.Category) (ExportResult, error) {
	result := ExportResult{OutputDir: exporter.OutputDir}

	if err := os.MkdirAll(exporter.OutputDir, 0755); err != nil {
		return result, fmt.Errorf("failed to create export directory: %w", err)
	}

	taken := make(map[string]bool)
	for _, category := range categories {
		dir := filepath.Join(exporter.OutputDir, utils.UniqueFilename(utils.SanitizeFilename(category.Name), taken))
		if err := exporter.exportCategory(ctx, category, dir, &result); err != nil {
			return result, err
		}
	}

	log.Printf("Export completed: %d categories, %d flashcards, %d categories failed",
		result.CategoriesProcessed, result.FlashcardsProcessed, result.CategoriesFailed)
	return result, nil
}

func (exporter *MarkdownExporter) exportCategory(ctx context.Context, category entities.Category, dir string, result *ExportResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	flashcards, err := exporter.flashcards.ListByCategories(ctx, []uint{category.ID})
	if err != nil {
		return fmt.Errorf("failed to list flashcards of %q: %w", category.Name, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create category directory: %w", err)
	}

	content, err := exporter.GenerateMarkdown(category, flashcards)
	if err != nil {
		log.Printf("Failed to render category %q: %v", category.Name, err)
		result.CategoriesFailed++
	} else if err := os.WriteFile(filepath.Join(dir, IndexFileName), []byte(content), 0644); err != nil {
		log.Printf("Failed to write category %q: %v", category.Name, err)
		result.CategoriesFailed++
	} else {
		result.CategoriesProcessed++
		result.FlashcardsProcessed += len(flashcards)
	}

	id := category.ID
	children, err := exporter.categories.ListByLevelAndParent(ctx, category.ChildLevel(), &id, entities.SortNameAsc)
	if err != nil {
		return fmt.Errorf("failed to list children of %q: %w", category.Name, err)
	}

	taken := make(map[string]bool)
	for _, child := range children {
		childDir := filepath.Join(dir, utils.UniqueFilename(utils.SanitizeFilename(child.Name), taken))
		if err := exporter.exportCategory(ctx, child, childDir, result); err != nil {
			return err
		}
	}
	return nil
}

// GenerateMarkdown renders a category and its flashcards as an index file.
func (exporter *MarkdownExporter) GenerateMarkdown(category entities.Category, flashcards []entities.Flashcard) (string, error) {
	var builder strings.Builder

	front, err := yaml.Marshal(Frontmatter{
		Name:            category.Name,
		Subtitle:        category.Subtitle,
		Description:     category.Description,
		ImagePath:       category.ImagePath,
		BackgroundColor: category.BackgroundColor,
		Frequency:       category.Frequency,
		ExportedAt:      exporter.now().Format("2006-01-02"),
	})
	if err != nil {
		return "", err
	}

	fmt.Fprintf(&builder, "---\n%s---\n\n", front)
	fmt.Fprintf(&builder, "# %s\n\n", category.Name)
	if category.Description != nil && *category.Description != "" {
		fmt.Fprintf(&builder, "%s\n\n", *category.Description)
	}

	for _, flashcard := range flashcards {
		fmt.Fprintf(&builder, "## %s\n\n", strings.ReplaceAll(flashcard.Name, "\n", " "))

		attrs := CardAttributes{
			BackgroundColor: flashcard.BackgroundColor,
			Frequency:       flashcard.Frequency,
			ImagePath:       flashcard.ImagePath,
		}
		if !attrs.IsZero() {
			inline, err := flowYAML(attrs)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&builder, "%s%s -->\n\n", CardCommentPrefix, inline)
		}

		fmt.Fprintf(&builder, "%s\n\n", strings.TrimSpace(flashcard.ConclusionText))
	}

	return builder.String(), nil
}

// flowYAML encodes v as a single-line YAML flow mapping.
func flowYAML(v any) (string, error) {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return "", err
	}
	node.Style = yaml.FlowStyle
	out, err := yaml.Marshal(&node)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
