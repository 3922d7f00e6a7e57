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

// FlashcardStore defines database operations for flashcard management.
type FlashcardStore interface {
	browse.FlashcardStore
	GetByID(ctx context.Context, id uint) (*entities.Flashcard, error)
	ListByLevelAndParent(ctx context.Context, level int, parentID *uint, sort entities.SortType) ([]entities.Flashcard, error)
	ListByCategories(ctx context.Context, categoryIDs []uint) ([]entities.Flashcard, error)
	Search(ctx context.Context, query string, limit int) ([]entities.Flashcard, error)
	IncrementFrequency(ctx context.Context, id uint) error
}

// CategoryGetter provides read access to categories.
type CategoryGetter interface {
	GetByID(ctx context.Context, id uint) (*entities.Category, error)
}

// FlashcardRequest is the body of flashcard create and update requests.
type FlashcardRequest struct {
	ID              *uint   `json:"id" binding:"omitempty,min=1"`
	Name            string  `json:"name" binding:"required"`
	ConclusionText  string  `json:"conclusion_text"`
	CategoryLevel   int     `json:"category_level" binding:"omitempty,min=1"`
	ImagePath       *string `json:"image_path"`
	Frequency       int     `json:"frequency" binding:"min=0"`
	CategoryID      uint    `json:"category_id" binding:"required,min=1"`
	BackgroundColor string  `json:"background_color" binding:"omitempty,bgcolor"`
}

type FlashcardsController struct {
	store      FlashcardStore
	categories CategoryGetter
}

func NewFlashcardsController(store FlashcardStore, categories CategoryGetter) *FlashcardsController {
	registerValidations()
	return &FlashcardsController{store: store, categories: categories}
}

// ListFlashcards returns the flashcards at a level
// GET /api/flashcards?level=&parent_id=&sort=&q=
func (fc *FlashcardsController) ListFlashcards(c *gin.Context) {
	q, ok := parseLevelQuery(c)
	if !ok {
		return
	}

	flashcards, err := fc.store.ListByLevelAndParent(c.Request.Context(), q.Level, q.ParentID, q.Sort)
	if err != nil {
		respondInternalError(c, err, "list flashcards")
		return
	}
	c.JSON(http.StatusOK, browse.FilterFlashcards(flashcards, q.Query))
}

// SearchFlashcards finds flashcards by prompt across all categories
// GET /api/flashcards/search?q=&limit=
func (fc *FlashcardsController) SearchFlashcards(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	flashcards, err := fc.store.Search(c.Request.Context(), query, limit)
	if err != nil {
		respondInternalError(c, err, "search flashcards")
		return
	}
	c.JSON(http.StatusOK, flashcards)
}

// GetFlashcard returns one flashcard
// GET /api/flashcards/:id
func (fc *FlashcardsController) GetFlashcard(c *gin.Context) {
	flashcard, ok := fc.loadFlashcard(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, flashcard)
}

// CreateFlashcard stores a new flashcard in an existing category
// POST /api/flashcards
func (fc *FlashcardsController) CreateFlashcard(c *gin.Context) {
	var req FlashcardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	flashcard, ok := fc.buildFlashcard(c, req, entities.Flashcard{})
	if !ok {
		return
	}

	inserted, err := fc.store.Insert(ctx, &flashcard)
	if err != nil {
		respondInternalError(c, err, "insert flashcard")
		return
	}
	if !inserted {
		existing, err := fc.store.GetByID(ctx, flashcard.ID)
		if err != nil || existing == nil {
			respondInternalError(c, errors.Join(errors.New("duplicate flashcard vanished"), err), "insert flashcard")
			return
		}
		c.JSON(http.StatusOK, existing)
		return
	}

	respondCreated(c, flashcard)
}

// UpdateFlashcard replaces a flashcard's fields
// PUT /api/flashcards/:id
func (fc *FlashcardsController) UpdateFlashcard(c *gin.Context) {
	current, ok := fc.loadFlashcard(c)
	if !ok {
		return
	}

	var req FlashcardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.ID != nil && *req.ID != current.ID {
		respondBadRequest(c, "id in body does not match path")
		return
	}

	flashcard, ok := fc.buildFlashcard(c, req, *current)
	if !ok {
		return
	}
	flashcard.ID = current.ID

	if err := fc.store.Update(c.Request.Context(), flashcard); err != nil {
		respondInternalError(c, err, "update flashcard")
		return
	}
	c.JSON(http.StatusOK, flashcard)
}

// DeleteFlashcard removes a flashcard
// DELETE /api/flashcards/:id
func (fc *FlashcardsController) DeleteFlashcard(c *gin.Context) {
	flashcard, ok := fc.loadFlashcard(c)
	if !ok {
		return
	}

	if err := fc.store.Delete(c.Request.Context(), *flashcard); err != nil {
		respondInternalError(c, err, "delete flashcard")
		return
	}
	respondSuccess(c, "flashcard deleted")
}

// ReviewFlashcard records one review of the flashcard
// POST /api/flashcards/:id/review
func (fc *FlashcardsController) ReviewFlashcard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := fc.store.IncrementFrequency(ctx, id); err != nil {
		respondInternalError(c, err, "review flashcard")
		return
	}
	flashcard, err := fc.store.GetByID(ctx, id)
	if err != nil {
		respondInternalError(c, err, "review flashcard")
		return
	}
	if flashcard == nil {
		respondNotFound(c, "flashcard")
		return
	}
	c.JSON(http.StatusOK, flashcard)
}

// StreamFlashcards pushes the flashcard list as server-sent events every
// time it changes
// GET /api/flashcards/stream?level=&parent_id=&sort=&q=
func (fc *FlashcardsController) StreamFlashcards(c *gin.Context) {
	q, ok := parseLevelQuery(c)
	if !ok {
		return
	}

	controller := browse.NewFlashcardController(fc.store, nil)
	defer controller.Close()

	updates := controller.Flashcards.Watch(c.Request.Context())
	controller.LoadFlashcards(q.Sort, q.Level, q.ParentID)

	c.Stream(func(w io.Writer) bool {
		for flashcards := range updates {
			if flashcards == nil {
				continue
			}
			c.SSEvent("flashcards", browse.FilterFlashcards(flashcards, q.Query))
			return true
		}
		return false
	})
}

func (fc *FlashcardsController) loadFlashcard(c *gin.Context) (*entities.Flashcard, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	flashcard, err := fc.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get flashcard")
		return nil, false
	}
	if flashcard == nil {
		respondNotFound(c, "flashcard")
		return nil, false
	}
	return flashcard, true
}

// buildFlashcard applies req on top of base. The level defaults to the
// child level of the owning category.
func (fc *FlashcardsController) buildFlashcard(c *gin.Context, req FlashcardRequest, base entities.Flashcard) (entities.Flashcard, bool) {
	flashcard := base
	if req.ID != nil {
		flashcard.ID = *req.ID
	}
	flashcard.Name = req.Name
	flashcard.ConclusionText = req.ConclusionText
	flashcard.ImagePath = req.ImagePath
	flashcard.Frequency = req.Frequency
	flashcard.CategoryID = req.CategoryID

	color, err := utils.NormalizeColor(req.BackgroundColor)
	if err != nil {
		respondBadRequest(c, err.Error())
		return flashcard, false
	}
	flashcard.BackgroundColor = color

	category, err := fc.categories.GetByID(c.Request.Context(), req.CategoryID)
	if err != nil {
		respondInternalError(c, err, "get flashcard category")
		return flashcard, false
	}
	if category == nil {
		respondBadRequest(c, "category not found")
		return flashcard, false
	}

	flashcard.CategoryLevel = req.CategoryLevel
	if flashcard.CategoryLevel == 0 {
		flashcard.CategoryLevel = category.ChildLevel()
	}
	return flashcard, true
}
