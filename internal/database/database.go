package database

import (
	"context"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/flashmemo/internal/database/categories"
	"github.com/mrlokans/flashmemo/internal/database/flashcards"
	"github.com/mrlokans/flashmemo/internal/database/migrations"
	"github.com/mrlokans/flashmemo/internal/entities"
	"github.com/mrlokans/flashmemo/internal/live"
)

// dsnParams are applied to every pooled connection by the sqlite3 driver.
const dsnParams = "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"

// Options tune how the store is opened.
type Options struct {
	LogLevel logger.LogLevel
}

type Database struct {
	DB  *gorm.DB
	Hub *live.Hub

	categories *categories.Repository
	flashcards *flashcards.Repository
}

func NewDatabase(dbPath string) (*Database, error) {
	return NewDatabaseWithOptions(dbPath, Options{LogLevel: logger.Warn})
}

func NewDatabaseWithOptions(dbPath string, opts Options) (*Database, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}
	gormLogger := logger.New(log.Default(), logger.Config{
		LogLevel:                  opts.LogLevel,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(sqlite.Open(dbPath+dsnParams), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrations.Apply(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	enabled, err := migrations.ForeignKeysEnabled(db)
	if err != nil {
		return nil, fmt.Errorf("failed to check foreign keys: %w", err)
	}
	if !enabled {
		return nil, fmt.Errorf("foreign keys are disabled for %s", dbPath)
	}

	hub := live.NewHub()
	database := &Database{
		DB:         db,
		Hub:        hub,
		categories: categories.NewRepository(db, hub),
		flashcards: flashcards.NewRepository(db, hub),
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

// Categories returns the category repository bound to this store.
func (d *Database) Categories() *categories.Repository {
	return d.categories
}

// Flashcards returns the flashcard repository bound to this store.
func (d *Database) Flashcards() *flashcards.Repository {
	return d.flashcards
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Watchers returns the number of live queries currently following the store.
func (d *Database) Watchers() int {
	return d.Hub.Subscribers()
}

func (d *Database) GetStats() (totalCategories int64, totalFlashcards int64, err error) {
	err = d.DB.Model(&entities.Category{}).Count(&totalCategories).Error
	if err != nil {
		return
	}
	err = d.DB.Model(&entities.Flashcard{}).Count(&totalFlashcards).Error
	return
}
