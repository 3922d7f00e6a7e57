package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/flashmemo/internal/browse"
	"github.com/mrlokans/flashmemo/internal/config"
	"github.com/mrlokans/flashmemo/internal/database"
	"github.com/mrlokans/flashmemo/internal/entities"
)

// TreeCommand prints the category hierarchy with flashcard counts.
type TreeCommand struct {
	DatabasePath string
	Sort         string
	Flashcards   bool

	out io.Writer
}

func NewTreeCommand() *TreeCommand {
	return &TreeCommand{out: os.Stdout}
}

func (cmd *TreeCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Sort, "sort", string(entities.SortNameAsc), "Order: name_asc, name_desc, frequency_asc or frequency_desc")
	fs.BoolVar(&cmd.Flashcards, "cards", false, "List flashcard prompts under each category")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s tree [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the category hierarchy.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := entities.ParseSortType(cmd.Sort); err != nil {
		return err
	}
	return nil
}

func (cmd *TreeCommand) Run() error {
	db, closeDB, err := openDatabase(cmd.DatabasePath, true)
	if err != nil {
		return err
	}
	defer closeDB()

	sort, err := entities.ParseSortType(cmd.Sort)
	if err != nil {
		return err
	}
	return cmd.print(context.Background(), db, sort, browse.RootLevel, nil, 0)
}

func (cmd *TreeCommand) print(ctx context.Context, db *database.Database, sort entities.SortType, level int, parentID *uint, depth int) error {
	categories, err := db.Categories().ListByLevelAndParent(ctx, level, parentID, sort)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	indent := strings.Repeat("  ", depth)
	for _, category := range categories {
		id := category.ID
		flashcards, err := db.Flashcards().ListByLevelAndParent(ctx, category.ChildLevel(), &id, sort)
		if err != nil {
			return fmt.Errorf("failed to list flashcards of %q: %w", category.Name, err)
		}

		fmt.Fprintf(cmd.out, "%s%s [%d] (%d flashcards)\n", indent, category.Name, category.ID, len(flashcards))
		if cmd.Flashcards {
			for _, flashcard := range flashcards {
				fmt.Fprintf(cmd.out, "%s  - %s\n", indent, flashcard.Name)
			}
		}

		if err := cmd.print(ctx, db, sort, category.ChildLevel(), &id, depth+1); err != nil {
			return err
		}
	}
	return nil
}
