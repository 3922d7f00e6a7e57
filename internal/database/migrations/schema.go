// Package migrations holds the SQLite schema for categories and flashcards.
//
// The schema is written out by hand rather than generated with AutoMigrate so
// that the self-referencing foreign key and its cascade rules are explicit.
package migrations

import (
	"fmt"

	"gorm.io/gorm"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	name             TEXT    NOT NULL,
	subtitle         TEXT,
	description      TEXT,
	category_level   INTEGER NOT NULL,
	image_path       TEXT,
	frequency        INTEGER NOT NULL DEFAULT 0,
	category_id      INTEGER,
	background_color TEXT    NOT NULL,
	FOREIGN KEY (category_id) REFERENCES categories (id)
		ON UPDATE CASCADE ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_categories_level_parent ON categories (category_level, category_id);

CREATE TABLE IF NOT EXISTS flashcards (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	name             TEXT    NOT NULL,
	conclusion_text  TEXT    NOT NULL,
	category_level   INTEGER NOT NULL,
	image_path       TEXT,
	frequency        INTEGER NOT NULL DEFAULT 0,
	category_id      INTEGER NOT NULL,
	background_color TEXT    NOT NULL,
	FOREIGN KEY (category_id) REFERENCES categories (id)
		ON UPDATE CASCADE ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_flashcards_level_parent ON flashcards (category_level, category_id);
`

// Apply creates the tables and indexes if they do not exist yet.
func Apply(db *gorm.DB) error {
	if err := db.Exec(schema).Error; err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// ForeignKeysEnabled reports whether the connection enforces foreign keys.
// Cascading deletes silently stop working when this is off.
func ForeignKeysEnabled(db *gorm.DB) (bool, error) {
	var enabled int
	if err := db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error; err != nil {
		return false, err
	}
	return enabled == 1, nil
}
