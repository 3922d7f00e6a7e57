package parsers

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/flashmemo/internal/entities"
	"github.com/mrlokans/flashmemo/internal/exporters"
)

// DeckParser reads the directory layout written by exporters.MarkdownExporter.
type DeckParser struct{}

func NewDeckParser() *DeckParser {
	return &DeckParser{}
}

// ParseResult contains the results of parsing a deck directory
type ParseResult struct {
	CategoriesProcessed int `json:"categories_processed"`
	FlashcardsProcessed int `json:"flashcards_processed"`
	CategoriesFailed    int `json:"categories_failed"`
}

// ParseDir reads decks from rootDir. When rootDir has its own index file it
// is a single deck; otherwise each subdirectory is one.
func (parser *DeckParser) ParseDir(rootDir string) ([]entities.Deck, ParseResult, error) {
	result := ParseResult{}

	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, result, fmt.Errorf("failed to open deck directory %s: %w", rootDir, err)
	}
	if !info.IsDir() {
		return nil, result, fmt.Errorf("%s is not a directory", rootDir)
	}

	if _, err := os.Stat(filepath.Join(rootDir, exporters.IndexFileName)); err == nil {
		deck, ok := parser.parseDeckDir(rootDir, &result)
		if !ok {
			return nil, result, fmt.Errorf("failed to parse deck %s", rootDir)
		}
		return []entities.Deck{deck}, result, nil
	}

	dirs, err := subdirectories(rootDir)
	if err != nil {
		return nil, result, err
	}

	decks := make([]entities.Deck, 0, len(dirs))
	for _, dir := range dirs {
		if deck, ok := parser.parseDeckDir(dir, &result); ok {
			decks = append(decks, deck)
		}
	}
	return decks, result, nil
}

// parseDeckDir parses dir and its subdirectories. A directory whose index
// file is broken is skipped along with everything under it.
func (parser *DeckParser) parseDeckDir(dir string, result *ParseResult) (entities.Deck, bool) {
	var deck entities.Deck

	indexPath := filepath.Join(dir, exporters.IndexFileName)
	if _, err := os.Stat(indexPath); err == nil {
		parsed, err := parser.ParseIndexFile(indexPath)
		if err != nil {
			log.Printf("Failed to parse file %s: %v", indexPath, err)
			result.CategoriesFailed++
			return deck, false
		}
		deck = *parsed
	} else {
		deck.Category = entities.Category{
			Name:            filepath.Base(dir),
			BackgroundColor: entities.DefaultBackgroundColor,
		}
	}
	result.CategoriesProcessed++
	result.FlashcardsProcessed += len(deck.Flashcards)

	dirs, err := subdirectories(dir)
	if err != nil {
		log.Printf("Failed to list %s: %v", dir, err)
		return deck, true
	}
	for _, child := range dirs {
		if childDeck, ok := parser.parseDeckDir(child, result); ok {
			deck.Children = append(deck.Children, childDeck)
		}
	}
	return deck, true
}

// ParseIndexFile reads a single index file into a deck without children.
// Levels and parent references are left for the importer to assign.
func (parser *DeckParser) ParseIndexFile(filePath string) (*entities.Deck, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}

	deck, err := parser.Parse(content)
	if err != nil {
		return nil, err
	}
	if deck.Category.Name == "" {
		deck.Category.Name = filepath.Base(filepath.Dir(filePath))
	}
	return deck, nil
}

// Parse reads index file content.
func (parser *DeckParser) Parse(content []byte) (*entities.Deck, error) {
	deck := &entities.Deck{
		Category:   entities.Category{BackgroundColor: entities.DefaultBackgroundColor},
		Flashcards: make([]entities.Flashcard, 0),
	}

	body, err := parseFrontmatter(content, &deck.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	if err := parseFlashcards(body, deck); err != nil {
		return nil, fmt.Errorf("failed to parse flashcards: %w", err)
	}
	return deck, nil
}

// parseFrontmatter fills category from the YAML header, if any, and returns
// the remaining body.
func parseFrontmatter(content []byte, category *entities.Category) ([]byte, error) {
	content = bytes.TrimPrefix(content, []byte("\ufeff"))
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return content, nil
	}

	rest := content[bytes.IndexByte(content, '\n')+1:]
	end := bytes.Index(rest, []byte("\n---"))
	var header []byte
	if bytes.HasPrefix(rest, []byte("---")) {
		rest = rest[3:]
	} else if end < 0 {
		return nil, fmt.Errorf("unterminated frontmatter")
	} else {
		header = rest[:end+1]
		rest = rest[end+4:]
	}

	var front exporters.Frontmatter
	if err := yaml.Unmarshal(header, &front); err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(front.Name)
	category.Subtitle = front.Subtitle
	category.Description = front.Description
	category.ImagePath = front.ImagePath
	category.Frequency = front.Frequency
	if front.BackgroundColor != "" {
		category.BackgroundColor = front.BackgroundColor
	}
	return rest, nil
}

// parseFlashcards turns every "## prompt" section into a flashcard. Text
// before the first section is the category description and is skipped, but
// a leading "# Title" names the category when the frontmatter did not.
func parseFlashcards(body []byte, deck *entities.Deck) error {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current *entities.Flashcard
	var answer strings.Builder
	expectAttributes := false

	flush := func() {
		if current == nil {
			return
		}
		current.ConclusionText = strings.TrimSpace(answer.String())
		deck.Flashcards = append(deck.Flashcards, *current)
		answer.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		switch {
		case strings.HasPrefix(line, "## "):
			flush()
			current = &entities.Flashcard{
				Name:            strings.TrimSpace(strings.TrimPrefix(line, "## ")),
				BackgroundColor: entities.DefaultBackgroundColor,
			}
			expectAttributes = true

		case current == nil:
			if deck.Category.Name == "" && strings.HasPrefix(line, "# ") {
				deck.Category.Name = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			}

		case expectAttributes && strings.TrimSpace(line) == "":
			// blank lines between heading and attributes

		case expectAttributes && strings.HasPrefix(line, exporters.CardCommentPrefix):
			expectAttributes = false
			if err := parseCardAttributes(line, current); err != nil {
				return fmt.Errorf("flashcard %q: %w", current.Name, err)
			}

		default:
			expectAttributes = false
			answer.WriteString(line)
			answer.WriteString("\n")
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	flush()
	return nil
}

func parseCardAttributes(line string, flashcard *entities.Flashcard) error {
	inner := strings.TrimPrefix(line, exporters.CardCommentPrefix)
	inner = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(inner), "-->"))

	var attrs exporters.CardAttributes
	if err := yaml.Unmarshal([]byte(inner), &attrs); err != nil {
		return err
	}
	if attrs.BackgroundColor != "" {
		flashcard.BackgroundColor = attrs.BackgroundColor
	}
	flashcard.Frequency = attrs.Frequency
	flashcard.ImagePath = attrs.ImagePath
	return nil
}

func subdirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	dirs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			dirs = append(dirs, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
