package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/flashmemo/internal/browse"
	"github.com/mrlokans/flashmemo/internal/entities"
)

// LevelStore lists the contents of one level of the hierarchy.
type LevelStore interface {
	GetByID(ctx context.Context, id uint) (*entities.Category, error)
	ListByLevelAndParent(ctx context.Context, level int, parentID *uint, sort entities.SortType) ([]entities.Category, error)
}

// LevelFlashcardStore lists the flashcards of one level of the hierarchy.
type LevelFlashcardStore interface {
	ListByLevelAndParent(ctx context.Context, level int, parentID *uint, sort entities.SortType) ([]entities.Flashcard, error)
}

type LevelsController struct {
	categories LevelStore
	flashcards LevelFlashcardStore
}

func NewLevelsController(categories LevelStore, flashcards LevelFlashcardStore) *LevelsController {
	return &LevelsController{categories: categories, flashcards: flashcards}
}

// GetLevel returns the parent category with the child categories and
// flashcards matching q, the way a levelled screen shows them together
// GET /api/levels?level=&parent_id=&sort=&q=
func (lc *LevelsController) GetLevel(c *gin.Context) {
	q, ok := parseLevelQuery(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	snapshot := browse.LevelSnapshot{
		Location: browse.Location{Level: q.Level, ParentID: q.ParentID},
	}

	if q.ParentID != nil {
		parent, err := lc.categories.GetByID(ctx, *q.ParentID)
		if err != nil {
			respondInternalError(c, err, "get level parent")
			return
		}
		if parent == nil {
			respondNotFound(c, "category")
			return
		}
		snapshot.Parent = parent
	}

	categories, err := lc.categories.ListByLevelAndParent(ctx, q.Level, q.ParentID, q.Sort)
	if err != nil {
		respondInternalError(c, err, "list level categories")
		return
	}
	flashcards, err := lc.flashcards.ListByLevelAndParent(ctx, q.Level, q.ParentID, q.Sort)
	if err != nil {
		respondInternalError(c, err, "list level flashcards")
		return
	}

	snapshot.Categories = browse.FilterCategories(categories, q.Query)
	snapshot.Flashcards = browse.FilterFlashcards(flashcards, q.Query)
	c.JSON(http.StatusOK, snapshot)
}
