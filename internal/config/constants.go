package config

// Default paths for on-disk state
const (
	// DefaultDatabasePath is the default path for the flashcard database
	DefaultDatabasePath = "./flashmemo.db"

	// DefaultImagesDir is where category and flashcard images are stored
	DefaultImagesDir = "./images"

	// DefaultExportDir is where Markdown decks are written
	DefaultExportDir = "./decks"
)
