// Package categories provides database operations for the category hierarchy.
//
// This package implements the CategoryStore interfaces defined in
// internal/http/categories.go and internal/browse/category_controller.go.
//
// # Interface Implementation
//
//	var _ http.CategoryStore = (*Repository)(nil)
//
// # Usage
//
//	repo := categories.NewRepository(db, hub)
//	roots, err := repo.ListByLevelAndParent(ctx, 1, nil, entities.SortNameAsc)
package categories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/flashmemo/internal/entities"
	"github.com/mrlokans/flashmemo/internal/live"
)

// maxTreeDepth bounds recursive walks so a corrupted parent chain cannot loop forever.
const maxTreeDepth = 256

// updatableColumns is the full record minus the primary key.
var updatableColumns = []string{
	"name", "subtitle", "description", "category_level",
	"image_path", "frequency", "category_id", "background_color",
}

// Repository handles all category database operations.
type Repository struct {
	db  *gorm.DB
	hub *live.Hub
}

// NewRepository creates a new categories repository. Writes are announced on hub.
func NewRepository(db *gorm.DB, hub *live.Hub) *Repository {
	if hub == nil {
		hub = live.NewHub()
	}
	return &Repository{db: db, hub: hub}
}

// Insert stores a new category. A zero ID is assigned by the database and
// written back. If a row with the same ID already exists nothing is written
// and Insert returns false with no error.
func (r *Repository) Insert(ctx context.Context, category *entities.Category) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(category)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	r.hub.Publish(live.TableCategories)
	return true, nil
}

// Update replaces every column of the row with the category's ID.
// Updating an ID that does not exist is a no-op.
func (r *Repository) Update(ctx context.Context, category entities.Category) error {
	if category.ID == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&entities.Category{ID: category.ID}).
		Select(updatableColumns).
		Updates(&category)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		r.hub.Publish(live.TableCategories)
	}
	return nil
}

// Delete removes the category. Child categories and flashcards are removed
// by the foreign key cascade. Deleting an unknown ID is a no-op.
func (r *Repository) Delete(ctx context.Context, category entities.Category) error {
	if category.ID == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Delete(&entities.Category{}, category.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		r.hub.Publish(live.TableCategories, live.TableFlashcards)
	}
	return nil
}

// GetByID retrieves a category by ID. Returns nil without error when absent.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Category, error) {
	var category entities.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListByLevelAndParent returns the categories at the given level. A nil
// parentID matches any parent.
func (r *Repository) ListByLevelAndParent(ctx context.Context, level int, parentID *uint, sort entities.SortType) ([]entities.Category, error) {
	categories := make([]entities.Category, 0)
	query := r.db.WithContext(ctx).Where("category_level = ?", level)
	if parentID != nil {
		query = query.Where("category_id = ?", *parentID)
	}
	err := query.Order(sort.OrderClause()).Find(&categories).Error
	return categories, err
}

// WatchDetail streams the category with the given ID, re-emitting after
// every category change. A nil value means the row does not exist.
func (r *Repository) WatchDetail(ctx context.Context, id uint) <-chan live.Result[*entities.Category] {
	return live.Watch(ctx, r.hub, func(ctx context.Context) (*entities.Category, error) {
		return r.GetByID(ctx, id)
	}, live.TableCategories)
}

// WatchByLevelAndParent streams ListByLevelAndParent results as the table changes.
func (r *Repository) WatchByLevelAndParent(ctx context.Context, level int, parentID *uint, sort entities.SortType) <-chan live.Result[[]entities.Category] {
	return live.Watch(ctx, r.hub, func(ctx context.Context) ([]entities.Category, error) {
		return r.ListByLevelAndParent(ctx, level, parentID, sort)
	}, live.TableCategories)
}

// Search finds categories whose name contains query (case-insensitive).
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]entities.Category, error) {
	categories := make([]entities.Category, 0)
	searchPattern := "%" + query + "%"
	q := r.db.WithContext(ctx).Where("LOWER(name) LIKE LOWER(?)", searchPattern).Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&categories).Error
	return categories, err
}

// Ancestors returns the parent chain of a category ordered from the root
// down to the direct parent. The category itself is not included.
func (r *Repository) Ancestors(ctx context.Context, id uint) ([]entities.Category, error) {
	categories := make([]entities.Category, 0)
	err := r.db.WithContext(ctx).Raw(`
		WITH RECURSIVE chain(id, category_id, depth) AS (
			SELECT id, category_id, 0 FROM categories WHERE id = ?
			UNION ALL
			SELECT c.id, c.category_id, chain.depth + 1
			FROM categories c JOIN chain ON c.id = chain.category_id
			WHERE chain.depth < ?
		)
		SELECT categories.* FROM categories
		JOIN chain ON categories.id = chain.id
		WHERE chain.depth > 0
		ORDER BY chain.depth DESC
	`, id, maxTreeDepth).Scan(&categories).Error
	return categories, err
}

// Descendants returns every category below the given one, shallowest first.
func (r *Repository) Descendants(ctx context.Context, id uint) ([]entities.Category, error) {
	categories := make([]entities.Category, 0)
	err := r.db.WithContext(ctx).Raw(`
		WITH RECURSIVE subtree(id, depth) AS (
			SELECT id, 0 FROM categories WHERE id = ?
			UNION ALL
			SELECT c.id, subtree.depth + 1
			FROM categories c JOIN subtree ON c.category_id = subtree.id
			WHERE subtree.depth < ?
		)
		SELECT categories.* FROM categories
		JOIN subtree ON categories.id = subtree.id
		WHERE subtree.depth > 0
		ORDER BY subtree.depth ASC, categories.name ASC
	`, id, maxTreeDepth).Scan(&categories).Error
	return categories, err
}

// IncrementFrequency bumps the usage counter of a category by one.
func (r *Repository) IncrementFrequency(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Category{}).
		Where("id = ?", id).
		UpdateColumn("frequency", gorm.Expr("frequency + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		r.hub.Publish(live.TableCategories)
	}
	return nil
}

// Count returns the total number of categories.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Category{}).Count(&count).Error
	return count, err
}
