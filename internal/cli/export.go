package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/flashmemo/internal/config"
	"github.com/mrlokans/flashmemo/internal/exporters"
)

// ExportCommand writes categories and their flashcards as a Markdown deck.
type ExportCommand struct {
	DatabasePath string
	OutputDir    string
	CategoryID   uint

	out io.Writer
}

func NewExportCommand() *ExportCommand {
	return &ExportCommand{out: os.Stdout}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.OutputDir, "dir", "", "Directory to write the deck into (required)")
	fs.UintVar(&cmd.CategoryID, "category", 0, "Export only this category and its subcategories")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export -dir <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export categories and flashcards as a Markdown deck: one directory per\n")
		fmt.Fprintf(os.Stderr, "category, each holding an index.md with its flashcards.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s export -dir ./decks\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s export -dir ./decks -category 3 -db ./flashmemo.db\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.OutputDir == "" {
		return fmt.Errorf("required flag -dir not provided")
	}

	return nil
}

func (cmd *ExportCommand) Run() error {
	db, closeDB, err := openDatabase(cmd.DatabasePath, true)
	if err != nil {
		return err
	}
	defer closeDB()

	exporter := exporters.NewMarkdownExporter(db.Categories(), db.Flashcards(), cmd.OutputDir)
	ctx := context.Background()

	var result exporters.ExportResult
	if cmd.CategoryID == 0 {
		result, err = exporter.ExportAll(ctx)
	} else {
		result, err = exporter.ExportCategory(ctx, cmd.CategoryID)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Fprintf(cmd.out, "Exported to: %s\n", result.OutputDir)
	fmt.Fprintf(cmd.out, "Categories processed: %d\n", result.CategoriesProcessed)
	fmt.Fprintf(cmd.out, "Flashcards processed: %d\n", result.FlashcardsProcessed)
	if result.CategoriesFailed > 0 {
		fmt.Fprintf(cmd.out, "Categories failed: %d (check logs above for details)\n", result.CategoriesFailed)
	}
	return nil
}
