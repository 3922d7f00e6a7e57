package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/flashmemo/internal/browse"
	"github.com/mrlokans/flashmemo/internal/entities"
	"github.com/mrlokans/flashmemo/internal/utils"
)

// CategoryStore defines database operations for category management.
type CategoryStore interface {
	browse.CategoryStore
	ListByLevelAndParent(ctx context.Context, level int, parentID *uint, sort entities.SortType) ([]entities.Category, error)
	Search(ctx context.Context, query string, limit int) ([]entities.Category, error)
	Ancestors(ctx context.Context, id uint) ([]entities.Category, error)
	Descendants(ctx context.Context, id uint) ([]entities.Category, error)
	IncrementFrequency(ctx context.Context, id uint) error
}

// CategoryRequest is the body of category create and update requests.
type CategoryRequest struct {
	ID              *uint   `json:"id" binding:"omitempty,min=1"`
	Name            string  `json:"name" binding:"required,max=200"`
	Subtitle        *string `json:"subtitle" binding:"omitempty,max=200"`
	Description     *string `json:"description"`
	CategoryLevel   int     `json:"category_level" binding:"omitempty,min=1"`
	ImagePath       *string `json:"image_path"`
	Frequency       int     `json:"frequency" binding:"min=0"`
	CategoryID      *uint   `json:"category_id" binding:"omitempty,min=1"`
	BackgroundColor string  `json:"background_color" binding:"omitempty,bgcolor"`
}

type CategoriesController struct {
	store CategoryStore
}

func NewCategoriesController(store CategoryStore) *CategoriesController {
	registerValidations()
	return &CategoriesController{store: store}
}

// ListCategories returns the categories at a level
// GET /api/categories?level=&parent_id=&sort=&q=
func (cc *CategoriesController) ListCategories(c *gin.Context) {
	q, ok := parseLevelQuery(c)
	if !ok {
		return
	}

	categories, err := cc.store.ListByLevelAndParent(c.Request.Context(), q.Level, q.ParentID, q.Sort)
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, browse.FilterCategories(categories, q.Query))
}

// SearchCategories finds categories by name at any level
// GET /api/categories/search?q=&limit=
func (cc *CategoriesController) SearchCategories(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	categories, err := cc.store.Search(c.Request.Context(), query, limit)
	if err != nil {
		respondInternalError(c, err, "search categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory returns one category
// GET /api/categories/:id
func (cc *CategoriesController) GetCategory(c *gin.Context) {
	category, ok := cc.loadCategory(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, category)
}

// CreateCategory stores a new category. A request carrying the ID of an
// existing category leaves it untouched and returns it with 200.
// POST /api/categories
func (cc *CategoriesController) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	category, ok := cc.buildCategory(c, req, entities.Category{})
	if !ok {
		return
	}

	inserted, err := cc.store.Insert(ctx, &category)
	if err != nil {
		respondInternalError(c, err, "insert category")
		return
	}
	if !inserted {
		existing, err := cc.store.GetByID(ctx, category.ID)
		if err != nil || existing == nil {
			respondInternalError(c, errors.Join(errors.New("duplicate category vanished"), err), "insert category")
			return
		}
		c.JSON(http.StatusOK, existing)
		return
	}

	respondCreated(c, category)
}

// UpdateCategory replaces a category's fields
// PUT /api/categories/:id
func (cc *CategoriesController) UpdateCategory(c *gin.Context) {
	current, ok := cc.loadCategory(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.ID != nil && *req.ID != current.ID {
		respondBadRequest(c, "id in body does not match path")
		return
	}
	if req.CategoryID != nil && *req.CategoryID == current.ID {
		respondBadRequest(c, "category cannot be its own parent")
		return
	}

	category, ok := cc.buildCategory(c, req, *current)
	if !ok {
		return
	}
	category.ID = current.ID

	if err := cc.store.Update(c.Request.Context(), category); err != nil {
		respondInternalError(c, err, "update category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category with its subcategories and flashcards
// DELETE /api/categories/:id
func (cc *CategoriesController) DeleteCategory(c *gin.Context) {
	category, ok := cc.loadCategory(c)
	if !ok {
		return
	}

	if err := cc.store.Delete(c.Request.Context(), *category); err != nil {
		respondInternalError(c, err, "delete category")
		return
	}
	respondSuccess(c, "category deleted")
}

// GetAncestors returns the parent chain from the root down
// GET /api/categories/:id/ancestors
func (cc *CategoriesController) GetAncestors(c *gin.Context) {
	category, ok := cc.loadCategory(c)
	if !ok {
		return
	}

	ancestors, err := cc.store.Ancestors(c.Request.Context(), category.ID)
	if err != nil {
		respondInternalError(c, err, "get ancestors")
		return
	}
	c.JSON(http.StatusOK, ancestors)
}

// GetDescendants returns every category below this one
// GET /api/categories/:id/descendants
func (cc *CategoriesController) GetDescendants(c *gin.Context) {
	category, ok := cc.loadCategory(c)
	if !ok {
		return
	}

	descendants, err := cc.store.Descendants(c.Request.Context(), category.ID)
	if err != nil {
		respondInternalError(c, err, "get descendants")
		return
	}
	c.JSON(http.StatusOK, descendants)
}

// VisitCategory records that the category was opened
// POST /api/categories/:id/visit
func (cc *CategoriesController) VisitCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := cc.store.IncrementFrequency(ctx, id); err != nil {
		respondInternalError(c, err, "visit category")
		return
	}
	category, err := cc.store.GetByID(ctx, id)
	if err != nil {
		respondInternalError(c, err, "visit category")
		return
	}
	if category == nil {
		respondNotFound(c, "category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// StreamCategories pushes the category list as server-sent events every
// time it changes
// GET /api/categories/stream?level=&parent_id=&sort=&q=
func (cc *CategoriesController) StreamCategories(c *gin.Context) {
	q, ok := parseLevelQuery(c)
	if !ok {
		return
	}

	controller := browse.NewCategoryController(cc.store, nil)
	defer controller.Close()

	updates := controller.Categories.Watch(c.Request.Context())
	controller.LoadCategories(q.Sort, q.Level, q.ParentID)

	c.Stream(func(w io.Writer) bool {
		for categories := range updates {
			if categories == nil {
				continue
			}
			c.SSEvent("categories", browse.FilterCategories(categories, q.Query))
			return true
		}
		return false
	})
}

// StreamCategory pushes one category as server-sent events every time it
// changes. A "deleted" event ends the stream.
// GET /api/categories/:id/stream
func (cc *CategoriesController) StreamCategory(c *gin.Context) {
	category, ok := cc.loadCategory(c)
	if !ok {
		return
	}

	controller := browse.NewCategoryController(cc.store, nil)
	defer controller.Close()

	updates := controller.Selected.Watch(c.Request.Context())
	controller.GetDetail(category.ID)

	seen := false
	c.Stream(func(w io.Writer) bool {
		for selected := range updates {
			if selected == nil {
				if !seen {
					continue
				}
				c.SSEvent("deleted", gin.H{"id": category.ID})
				return false
			}
			seen = true
			c.SSEvent("category", selected)
			return true
		}
		return false
	})
}

// loadCategory resolves the :id parameter, responding 400/404/500 itself
// when it cannot.
func (cc *CategoriesController) loadCategory(c *gin.Context) (*entities.Category, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	category, err := cc.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get category")
		return nil, false
	}
	if category == nil {
		respondNotFound(c, "category")
		return nil, false
	}
	return category, true
}

// buildCategory applies req on top of base. The level defaults to one below
// the parent, or the root level without a parent.
func (cc *CategoriesController) buildCategory(c *gin.Context, req CategoryRequest, base entities.Category) (entities.Category, bool) {
	category := base
	if req.ID != nil {
		category.ID = *req.ID
	}
	category.Name = req.Name
	category.Subtitle = req.Subtitle
	category.Description = req.Description
	category.ImagePath = req.ImagePath
	category.Frequency = req.Frequency
	category.CategoryID = req.CategoryID

	color, err := utils.NormalizeColor(req.BackgroundColor)
	if err != nil {
		respondBadRequest(c, err.Error())
		return category, false
	}
	category.BackgroundColor = color

	category.CategoryLevel = req.CategoryLevel
	if req.CategoryID == nil {
		if category.CategoryLevel == 0 {
			category.CategoryLevel = browse.RootLevel
		}
		return category, true
	}

	parent, err := cc.store.GetByID(c.Request.Context(), *req.CategoryID)
	if err != nil {
		respondInternalError(c, err, "get parent category")
		return category, false
	}
	if parent == nil {
		respondBadRequest(c, "parent category not found")
		return category, false
	}
	if category.CategoryLevel == 0 {
		category.CategoryLevel = parent.ChildLevel()
	}
	return category, true
}
