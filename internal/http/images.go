package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/flashmemo/internal/entities"
	"github.com/mrlokans/flashmemo/internal/images"
)

// imageOwner reads and writes the image path of one kind of record.
type imageOwner struct {
	kind     string
	resource string
	get      func(ctx context.Context, id uint) (*string, bool, error)
	set      func(ctx context.Context, id uint, imagePath *string) error
}

// ImageRequest is the body of an image update from a URL.
type ImageRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// ImagesController handles category and flashcard images.
type ImagesController struct {
	store      *images.Store
	categories imageOwner
	flashcards imageOwner
}

// ImageCategoryStore is what the images controller needs from the category repository.
type ImageCategoryStore interface {
	GetByID(ctx context.Context, id uint) (*entities.Category, error)
	Update(ctx context.Context, category entities.Category) error
}

// ImageFlashcardStore is what the images controller needs from the flashcard repository.
type ImageFlashcardStore interface {
	GetByID(ctx context.Context, id uint) (*entities.Flashcard, error)
	Update(ctx context.Context, flashcard entities.Flashcard) error
}

// NewImagesController creates a new ImagesController.
func NewImagesController(store *images.Store, categories ImageCategoryStore, flashcards ImageFlashcardStore) *ImagesController {
	return &ImagesController{
		store: store,
		categories: imageOwner{
			kind:     images.KindCategory,
			resource: "category",
			get: func(ctx context.Context, id uint) (*string, bool, error) {
				category, err := categories.GetByID(ctx, id)
				if err != nil || category == nil {
					return nil, false, err
				}
				return category.ImagePath, true, nil
			},
			set: func(ctx context.Context, id uint, imagePath *string) error {
				category, err := categories.GetByID(ctx, id)
				if err != nil || category == nil {
					return err
				}
				category.ImagePath = imagePath
				return categories.Update(ctx, *category)
			},
		},
		flashcards: imageOwner{
			kind:     images.KindFlashcard,
			resource: "flashcard",
			get: func(ctx context.Context, id uint) (*string, bool, error) {
				flashcard, err := flashcards.GetByID(ctx, id)
				if err != nil || flashcard == nil {
					return nil, false, err
				}
				return flashcard.ImagePath, true, nil
			},
			set: func(ctx context.Context, id uint, imagePath *string) error {
				flashcard, err := flashcards.GetByID(ctx, id)
				if err != nil || flashcard == nil {
					return err
				}
				flashcard.ImagePath = imagePath
				return flashcards.Update(ctx, *flashcard)
			},
		},
	}
}

// GetCategoryImage serves a category's image.
// GET /api/categories/:id/image
func (ic *ImagesController) GetCategoryImage(c *gin.Context) {
	ic.serve(c, ic.categories)
}

// PutCategoryImage sets a category's image from a URL or an upload.
// PUT /api/categories/:id/image
func (ic *ImagesController) PutCategoryImage(c *gin.Context) {
	ic.put(c, ic.categories)
}

// DeleteCategoryImage clears a category's image.
// DELETE /api/categories/:id/image
func (ic *ImagesController) DeleteCategoryImage(c *gin.Context) {
	ic.clear(c, ic.categories)
}

// GetFlashcardImage serves a flashcard's image.
// GET /api/flashcards/:id/image
func (ic *ImagesController) GetFlashcardImage(c *gin.Context) {
	ic.serve(c, ic.flashcards)
}

// PutFlashcardImage sets a flashcard's image from a URL or an upload.
// PUT /api/flashcards/:id/image
func (ic *ImagesController) PutFlashcardImage(c *gin.Context) {
	ic.put(c, ic.flashcards)
}

// DeleteFlashcardImage clears a flashcard's image.
// DELETE /api/flashcards/:id/image
func (ic *ImagesController) DeleteFlashcardImage(c *gin.Context) {
	ic.clear(c, ic.flashcards)
}

func (ic *ImagesController) serve(c *gin.Context, owner imageOwner) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	imagePath, found, err := owner.get(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get "+owner.resource+" image")
		return
	}
	if !found {
		respondNotFound(c, owner.resource)
		return
	}
	if imagePath == nil || *imagePath == "" {
		respondNotFound(c, "image")
		return
	}

	if ic.store.Contains(*imagePath) {
		c.File(*imagePath)
		return
	}

	// Paths that are remote URLs are cached on first access.
	if isRemoteURL(*imagePath) {
		cachePath, err := ic.store.Fetch(c.Request.Context(), owner.kind, id, *imagePath)
		if err != nil || cachePath == "" {
			c.Redirect(http.StatusTemporaryRedirect, *imagePath)
			return
		}
		c.File(cachePath)
		return
	}

	respondNotFound(c, "image")
}

func (ic *ImagesController) put(c *gin.Context, owner imageOwner) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, found, err := owner.get(ctx, id); err != nil {
		respondInternalError(c, err, "get "+owner.resource)
		return
	} else if !found {
		respondNotFound(c, owner.resource)
		return
	}

	var stored string
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		file, err := c.FormFile("image")
		if err != nil {
			respondBadRequest(c, "image file is required")
			return
		}
		f, err := file.Open()
		if err != nil {
			respondBadRequest(c, "unreadable image upload")
			return
		}
		defer f.Close()

		stored, err = ic.store.Save(owner.kind, id, f, file.Header.Get("Content-Type"))
		if err != nil {
			respondError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
	} else {
		var req ImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if !isRemoteURL(req.URL) {
			respondBadRequest(c, "url must be http or https")
			return
		}
		if err := ic.store.Invalidate(owner.kind, id); err != nil {
			respondInternalError(c, err, "invalidate "+owner.resource+" image")
			return
		}
		var err error
		stored, err = ic.store.Fetch(ctx, owner.kind, id, req.URL)
		if err != nil {
			respondError(c, http.StatusBadGateway, "failed to fetch image: "+err.Error())
			return
		}
	}

	if err := owner.set(ctx, id, &stored); err != nil {
		respondInternalError(c, err, "set "+owner.resource+" image")
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_path": stored})
}

func (ic *ImagesController) clear(c *gin.Context, owner imageOwner) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, found, err := owner.get(ctx, id); err != nil {
		respondInternalError(c, err, "get "+owner.resource)
		return
	} else if !found {
		respondNotFound(c, owner.resource)
		return
	}

	if err := ic.store.Invalidate(owner.kind, id); err != nil {
		respondInternalError(c, err, "invalidate "+owner.resource+" image")
		return
	}
	if err := owner.set(ctx, id, nil); err != nil {
		respondInternalError(c, err, "clear "+owner.resource+" image")
		return
	}
	respondSuccess(c, "image removed")
}

func isRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
