package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/flashmemo/internal/database"
	"github.com/mrlokans/flashmemo/internal/entities"
)

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabaseWithOptions(filepath.Join(t.TempDir(), "http.db"), database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedCategory(t *testing.T, db *database.Database, name string, parent *entities.Category) *entities.Category {
	t.Helper()
	category := &entities.Category{Name: name, CategoryLevel: 1, BackgroundColor: entities.DefaultBackgroundColor}
	if parent != nil {
		category.CategoryID = &parent.ID
		category.CategoryLevel = parent.ChildLevel()
	}
	_, err := db.Categories().Insert(context.Background(), category)
	require.NoError(t, err)
	return category
}

func seedFlashcard(t *testing.T, db *database.Database, name string, category *entities.Category) *entities.Flashcard {
	t.Helper()
	flashcard := &entities.Flashcard{
		Name:            name,
		ConclusionText:  "answer to " + name,
		CategoryID:      category.ID,
		CategoryLevel:   category.ChildLevel(),
		BackgroundColor: entities.DefaultBackgroundColor,
	}
	_, err := db.Flashcards().Insert(context.Background(), flashcard)
	require.NoError(t, err)
	return flashcard
}

func doJSON(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
