package entities

// Flashcard is a leaf record of the hierarchy: a prompt (Name) and its answer
// (ConclusionText), owned by exactly one category.
type Flashcard struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	Name            string  `json:"name"`
	ConclusionText  string  `json:"conclusion_text"`
	CategoryLevel   int     `json:"category_level"`
	ImagePath       *string `json:"image_path"`
	Frequency       int     `json:"frequency"`
	CategoryID      uint    `json:"category_id"`
	BackgroundColor string  `json:"background_color"`
}

func (Flashcard) TableName() string {
	return "flashcards"
}
