package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/flashmemo/internal/browse"
	"github.com/mrlokans/flashmemo/internal/config"
	"github.com/mrlokans/flashmemo/internal/entities"
)

const browseLoadTimeout = 5 * time.Second

// errLevelNotLoaded is returned when a level does not arrive in time.
var errLevelNotLoaded = errors.New("level did not load in time")

// BrowseCommand walks the category tree interactively, one level at a time.
type BrowseCommand struct {
	DatabasePath string
	Sort         string

	in  io.Reader
	out io.Writer
	mu  sync.Mutex
}

func NewBrowseCommand() *BrowseCommand {
	return &BrowseCommand{in: os.Stdin, out: os.Stdout}
}

func (cmd *BrowseCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Sort, "sort", string(entities.SortNameAsc), "Initial order: name_asc, name_desc, frequency_asc or frequency_desc")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s browse [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Browse categories and flashcards level by level.\n")
		fmt.Fprintf(os.Stderr, "Commands: ls, open <number|name>, back, sort <order>, find [text], quit\n\n")
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

func (cmd *BrowseCommand) printf(format string, args ...any) {
	cmd.mu.Lock()
	defer cmd.mu.Unlock()
	fmt.Fprintf(cmd.out, format, args...)
}

func (cmd *BrowseCommand) Run() error {
	db, closeDB, err := openDatabase(cmd.DatabasePath, true)
	if err != nil {
		return err
	}
	defer closeDB()

	sort, err := entities.ParseSortType(cmd.Sort)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := browse.NewDispatcher(ctx)
	dispatcher.OnError(func(op string, err error) {
		cmd.printf("error: %s: %v\n", op, err)
	})

	view := browse.NewLevelView(db.Categories(), db.Flashcards(), dispatcher)
	defer func() {
		view.Close()
		dispatcher.Wait()
	}()
	if sort != entities.SortNameAsc {
		view.SetSort(sort)
	}

	if err := cmd.show(view); err != nil {
		return err
	}

	scanner := bufio.NewScanner(cmd.in)
	for {
		cmd.printf("> ")
		if !scanner.Scan() {
			cmd.printf("\n")
			return scanner.Err()
		}

		name, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch name {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "ls":
			err = cmd.show(view)
		case "open":
			err = cmd.open(view, arg)
		case "back":
			if !view.Back() {
				cmd.printf("Already at the top level\n")
				continue
			}
			err = cmd.show(view)
		case "sort":
			sort, parseErr := entities.ParseSortType(arg)
			if parseErr != nil {
				cmd.printf("%v\n", parseErr)
				continue
			}
			view.SetSort(sort)
			err = cmd.show(view)
		case "find":
			view.SetQuery(arg)
			err = cmd.show(view)
		default:
			cmd.printf("Unknown command: %s\n", name)
			continue
		}
		if err != nil {
			return err
		}
	}
}

// open descends into the category picked by list number or by name.
func (cmd *BrowseCommand) open(view *browse.LevelView, arg string) error {
	snap, err := waitLoaded(view)
	if err != nil {
		return err
	}

	var target *entities.Category
	if n, convErr := strconv.Atoi(arg); convErr == nil && n >= 1 && n <= len(snap.Categories) {
		target = &snap.Categories[n-1]
	} else {
		for i := range snap.Categories {
			if strings.EqualFold(snap.Categories[i].Name, arg) {
				target = &snap.Categories[i]
				break
			}
		}
	}
	if target == nil {
		cmd.printf("No category %q here\n", arg)
		return nil
	}

	view.Open(*target)
	return cmd.show(view)
}

func (cmd *BrowseCommand) show(view *browse.LevelView) error {
	snap, err := waitLoaded(view)
	if err != nil {
		return err
	}

	title := "Top level"
	if snap.Parent != nil {
		title = snap.Parent.Name
	}
	cmd.printf("%s (level %d, depth %d)\n", title, snap.Location.Level, view.Depth())

	if len(snap.Categories) == 0 && len(snap.Flashcards) == 0 {
		cmd.printf("  (empty)\n")
		return nil
	}
	for i, category := range snap.Categories {
		cmd.printf("  %d. %s/\n", i+1, category.Name)
	}
	for _, flashcard := range snap.Flashcards {
		cmd.printf("  - %s\n", flashcard.Name)
	}
	return nil
}

// waitLoaded polls until the current level has arrived from the store.
func waitLoaded(view *browse.LevelView) (browse.LevelSnapshot, error) {
	deadline := time.Now().Add(browseLoadTimeout)
	for {
		snap := view.Snapshot()
		if snap.Loaded() {
			return snap, nil
		}
		if time.Now().After(deadline) {
			return snap, errLevelNotLoaded
		}
		time.Sleep(10 * time.Millisecond)
	}
}
