package entities

// DefaultBackgroundColor is used when a category or flashcard is created without a color.
const DefaultBackgroundColor = "#FFFFFF"

// Category is a node in the topic hierarchy. Root categories have no parent
// (CategoryID is nil) and sit at level 1; every other category points at its
// parent and conventionally sits one level deeper.
type Category struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	Name            string  `json:"name"`
	Subtitle        *string `json:"subtitle"`
	Description     *string `json:"description"`
	CategoryLevel   int     `json:"category_level"`
	ImagePath       *string `json:"image_path"`
	Frequency       int     `json:"frequency"`
	CategoryID      *uint   `json:"category_id"` // Parent category, nil for roots
	BackgroundColor string  `json:"background_color"`
}

func (Category) TableName() string {
	return "categories"
}

// IsRoot reports whether the category has no parent.
func (c Category) IsRoot() bool {
	return c.CategoryID == nil
}

// ChildLevel is the level at which children of this category are listed.
func (c Category) ChildLevel() int {
	return c.CategoryLevel + 1
}
