// Package flashcards provides database operations for flashcards.
//
// It mirrors the categories repository: the same conflict policy on insert,
// full-record updates, and live list and detail feeds.
package flashcards

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/flashmemo/internal/entities"
	"github.com/mrlokans/flashmemo/internal/live"
)

var updatableColumns = []string{
	"name", "conclusion_text", "category_level", "image_path",
	"frequency", "category_id", "background_color",
}

// Repository handles all flashcard database operations.
type Repository struct {
	db  *gorm.DB
	hub *live.Hub
}

// NewRepository creates a new flashcards repository. Writes are announced on hub.
func NewRepository(db *gorm.DB, hub *live.Hub) *Repository {
	if hub == nil {
		hub = live.NewHub()
	}
	return &Repository{db: db, hub: hub}
}

// Insert stores a new flashcard, ignoring it when the ID is already taken.
// The owning category must exist.
func (r *Repository) Insert(ctx context.Context, flashcard *entities.Flashcard) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(flashcard)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	r.hub.Publish(live.TableFlashcards)
	return true, nil
}

// Update replaces the row with the flashcard's ID. Unknown IDs are ignored.
func (r *Repository) Update(ctx context.Context, flashcard entities.Flashcard) error {
	if flashcard.ID == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&entities.Flashcard{ID: flashcard.ID}).
		Select(updatableColumns).
		Updates(&flashcard)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		r.hub.Publish(live.TableFlashcards)
	}
	return nil
}

// Delete removes the flashcard. Unknown IDs are ignored.
func (r *Repository) Delete(ctx context.Context, flashcard entities.Flashcard) error {
	if flashcard.ID == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Delete(&entities.Flashcard{}, flashcard.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		r.hub.Publish(live.TableFlashcards)
	}
	return nil
}

// GetByID retrieves a flashcard by ID. Returns nil without error when absent.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Flashcard, error) {
	var flashcard entities.Flashcard
	err := r.db.WithContext(ctx).First(&flashcard, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &flashcard, nil
}

// ListByLevelAndParent returns the flashcards at the given level, optionally
// restricted to one owning category.
func (r *Repository) ListByLevelAndParent(ctx context.Context, level int, parentID *uint, sort entities.SortType) ([]entities.Flashcard, error) {
	flashcards := make([]entities.Flashcard, 0)
	query := r.db.WithContext(ctx).Where("category_level = ?", level)
	if parentID != nil {
		query = query.Where("category_id = ?", *parentID)
	}
	err := query.Order(sort.OrderClause()).Find(&flashcards).Error
	return flashcards, err
}

// ListByCategories returns the flashcards owned by any of the given categories, by name.
func (r *Repository) ListByCategories(ctx context.Context, categoryIDs []uint) ([]entities.Flashcard, error) {
	flashcards := make([]entities.Flashcard, 0)
	if len(categoryIDs) == 0 {
		return flashcards, nil
	}
	err := r.db.WithContext(ctx).
		Where("category_id IN ?", categoryIDs).
		Order("name ASC").
		Find(&flashcards).Error
	return flashcards, err
}

// WatchDetail streams the flashcard with the given ID. Category deletes
// announce this table as well, so cascaded removals show up as nil.
func (r *Repository) WatchDetail(ctx context.Context, id uint) <-chan live.Result[*entities.Flashcard] {
	return live.Watch(ctx, r.hub, func(ctx context.Context) (*entities.Flashcard, error) {
		return r.GetByID(ctx, id)
	}, live.TableFlashcards)
}

// WatchByLevelAndParent streams ListByLevelAndParent results as the table changes.
func (r *Repository) WatchByLevelAndParent(ctx context.Context, level int, parentID *uint, sort entities.SortType) <-chan live.Result[[]entities.Flashcard] {
	return live.Watch(ctx, r.hub, func(ctx context.Context) ([]entities.Flashcard, error) {
		return r.ListByLevelAndParent(ctx, level, parentID, sort)
	}, live.TableFlashcards)
}

// Search finds flashcards whose prompt contains query (case-insensitive).
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]entities.Flashcard, error) {
	flashcards := make([]entities.Flashcard, 0)
	searchPattern := "%" + query + "%"
	q := r.db.WithContext(ctx).Where("LOWER(name) LIKE LOWER(?)", searchPattern).Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&flashcards).Error
	return flashcards, err
}

// IncrementFrequency records one review of the flashcard.
func (r *Repository) IncrementFrequency(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Flashcard{}).
		Where("id = ?", id).
		UpdateColumn("frequency", gorm.Expr("frequency + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		r.hub.Publish(live.TableFlashcards)
	}
	return nil
}

// Count returns the total number of flashcards.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Flashcard{}).Count(&count).Error
	return count, err
}
