package importers

import (
	"github.com/mrlokans/flashmemo/internal/entities"
	"github.com/mrlokans/flashmemo/internal/parsers"
)

// MarkdownConverter reads a deck directory written by the Markdown exporter.
type MarkdownConverter struct {
	Dir    string
	parser *parsers.DeckParser
}

func NewMarkdownConverter(dir string) *MarkdownConverter {
	return &MarkdownConverter{Dir: dir, parser: parsers.NewDeckParser()}
}

func (c *MarkdownConverter) Convert() ([]entities.Deck, Source, error) {
	source := Source{Name: "markdown", Path: c.Dir}
	decks, _, err := c.parser.ParseDir(c.Dir)
	return decks, source, err
}
