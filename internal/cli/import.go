package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/flashmemo/internal/config"
	"github.com/mrlokans/flashmemo/internal/importers"
)

// ImportCommand reads a Markdown deck directory into the database.
type ImportCommand struct {
	Directory    string
	DatabasePath string
	ParentID     uint
	DryRun       bool

	out io.Writer
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{out: os.Stdout}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)

	fs.StringVar(&cmd.Directory, "dir", "", "Deck directory to import (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.UintVar(&cmd.ParentID, "parent", 0, "Attach the imported decks under this category")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -dir <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a Markdown deck directory as categories and flashcards.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import -dir ./decks\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import -dir ./decks -parent 3 -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Directory == "" {
		return fmt.Errorf("required flag -dir not provided")
	}

	return nil
}

func (cmd *ImportCommand) Run() error {
	if _, err := os.Stat(cmd.Directory); os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", cmd.Directory)
	}

	converter := importers.NewMarkdownConverter(cmd.Directory)
	decks, source, err := converter.Convert()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", source.Path, err)
	}

	if cmd.DryRun {
		fmt.Fprintln(cmd.out, "DRY RUN MODE - No changes will be made")
		for _, deck := range decks {
			fmt.Fprintf(cmd.out, "%s: %d categories, %d flashcards\n",
				deck.Category.Name, deck.CountCategories(), deck.CountFlashcards())
		}
		return nil
	}

	db, closeDB, err := openDatabase(cmd.DatabasePath, false)
	if err != nil {
		return err
	}
	defer closeDB()

	var parentID *uint
	if cmd.ParentID != 0 {
		parentID = &cmd.ParentID
	}

	pipeline := importers.NewPipeline(db.Categories(), db.Flashcards())
	result, err := pipeline.ImportDecks(context.Background(), decks, parentID)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintf(cmd.out, "Categories imported: %d\n", result.CategoriesImported)
	fmt.Fprintf(cmd.out, "Flashcards imported: %d\n", result.FlashcardsImported)
	if result.CategoriesFailed > 0 || result.FlashcardsFailed > 0 {
		fmt.Fprintf(cmd.out, "Failed: %d categories, %d flashcards (check logs above for details)\n",
			result.CategoriesFailed, result.FlashcardsFailed)
	}
	return nil
}
