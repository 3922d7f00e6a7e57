package entities

// Deck is a category together with its flashcards and child decks, the unit
// exported to and imported from Markdown directories.
type Deck struct {
	Category   Category
	Flashcards []Flashcard
	Children   []Deck
}

// CountCategories returns the number of categories in the deck tree.
func (d Deck) CountCategories() int {
	n := 1
	for _, child := range d.Children {
		n += child.CountCategories()
	}
	return n
}

// CountFlashcards returns the number of flashcards in the deck tree.
func (d Deck) CountFlashcards() int {
	n := len(d.Flashcards)
	for _, child := range d.Children {
		n += child.CountFlashcards()
	}
	return n
}
