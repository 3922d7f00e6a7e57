// Package importers provides a unified pipeline for importing decks into the store.
//
// # Architecture
//
// The import pipeline follows a simple flow:
//
//	Source Data → Converter → entities.Deck tree → Pipeline → repositories
//
// Each import source implements the Converter interface, which turns its
// data into deck trees. The Pipeline then walks each tree top-down, inserting
// categories before their children so every row references an existing
// parent, and assigns levels and parent IDs on the way.
//
// # Adding a New Import Source
//
//  1. Create a new file, e.g. anki.go
//  2. Implement Converter, returning one Deck per top-level category
//  3. Call Pipeline.Import from the HTTP handler, task or CLI command
//
// The pipeline ignores IDs, levels and parent references found in the
// decks; they are always derived from where the deck is attached.
package importers
