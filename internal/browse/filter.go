package browse

import (
	"strings"

	"github.com/mrlokans/flashmemo/internal/entities"
)

func nameMatches(name, query string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(query))
}

// FilterCategories keeps the categories whose name contains query, ignoring
// case. An empty query keeps everything and a nil list stays nil.
func FilterCategories(categories []entities.Category, query string) []entities.Category {
	if categories == nil {
		return nil
	}
	filtered := make([]entities.Category, 0, len(categories))
	for _, c := range categories {
		if nameMatches(c.Name, query) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// FilterFlashcards keeps the flashcards whose prompt contains query, ignoring case.
func FilterFlashcards(flashcards []entities.Flashcard, query string) []entities.Flashcard {
	if flashcards == nil {
		return nil
	}
	filtered := make([]entities.Flashcard, 0, len(flashcards))
	for _, f := range flashcards {
		if nameMatches(f.Name, query) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}
