package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/flashmemo/internal/database"
	"github.com/mrlokans/flashmemo/internal/entities"
	"github.com/mrlokans/flashmemo/internal/importers"
	"github.com/mrlokans/flashmemo/internal/scheduler"
	"github.com/mrlokans/flashmemo/internal/tasks"
)

const fixtureDecks = "../fixtures/decks"

type fakeTaskQueue struct {
	mu       sync.Mutex
	enqueued []backlite.Task
	statuses map[string]backlite.TaskStatus
	err      error
}

func (f *fakeTaskQueue) Enqueue(ctx context.Context, task backlite.Task) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.enqueued = append(f.enqueued, task)
	return fmt.Sprintf("task-%d", len(f.enqueued)), nil
}

func (f *fakeTaskQueue) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	if status, ok := f.statuses[taskID]; ok {
		return status, nil
	}
	return backlite.TaskStatusNotFound, nil
}

func (f *fakeTaskQueue) Queues() []string {
	return []string{"export_deck", "import_deck"}
}

type fakeScheduler struct {
	running bool
	runs    int
	last    *scheduler.RunStatus
}

func (f *fakeScheduler) IsRunning() bool { return f.running }

func (f *fakeScheduler) GetNextRunTime() *time.Time {
	if !f.running {
		return nil
	}
	next := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return &next
}

func (f *fakeScheduler) LastRun() *scheduler.RunStatus { return f.last }

func (f *fakeScheduler) RunNow() error {
	if !f.running {
		return errors.New("export directory not configured")
	}
	f.runs++
	return nil
}

func newDecksRouter(t *testing.T, db *database.Database, queue TaskQueue, sched ExportScheduler) *gin.Engine {
	t.Helper()
	return NewRouter(RouterConfig{
		Database:        db,
		Categories:      db.Categories(),
		Flashcards:      db.Flashcards(),
		Importer:        importers.NewPipeline(db.Categories(), db.Flashcards()),
		ExportDir:       t.TempDir(),
		ExportScheduler: sched,
		TaskClient:      queue,
	})
}

func TestDecksController_ImportThenExport(t *testing.T) {
	db := setupTestDB(t)
	router := newDecksRouter(t, db, nil, nil)

	w := doJSON(router, "POST", "/api/import", gin.H{"dir": fixtureDecks})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	imported := decode[importers.ImportResult](t, w)
	assert.Equal(t, 4, imported.CategoriesImported)
	assert.Equal(t, 5, imported.FlashcardsImported)

	w = doJSON(router, "GET", "/api/categories", nil)
	roots := decode[[]entities.Category](t, w)
	require.Len(t, roots, 2)
	assert.Equal(t, "Art", roots[0].Name)
	assert.Equal(t, "Languages", roots[1].Name)

	out := t.TempDir()
	w = doJSON(router, "POST", "/api/export", gin.H{"output_dir": out})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	exported := decode[gin.H](t, w)
	assert.EqualValues(t, 4, exported["categories_processed"])
	assert.EqualValues(t, 5, exported["flashcards_processed"])

	content, err := os.ReadFile(filepath.Join(out, "Languages", "Go", "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "## What is the zero value of a map?")
}

func TestDecksController_ImportUnderParent(t *testing.T) {
	db := setupTestDB(t)
	router := newDecksRouter(t, db, nil, nil)
	parent := seedCategory(t, db, "Shared", nil)

	w := doJSON(router, "POST", "/api/import", gin.H{"dir": fixtureDecks, "parent_id": parent.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, "GET", fmt.Sprintf("/api/categories?level=2&parent_id=%d", parent.ID), nil)
	children := decode[[]entities.Category](t, w)
	assert.Len(t, children, 2)

	w = doJSON(router, "POST", "/api/import", gin.H{"dir": fixtureDecks, "parent_id": 999})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecksController_ImportRequiresDir(t *testing.T) {
	db := setupTestDB(t)
	router := newDecksRouter(t, db, nil, nil)

	w := doJSON(router, "POST", "/api/import", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecksController_DownloadMarkdown(t *testing.T) {
	db := setupTestDB(t)
	router := newDecksRouter(t, db, nil, nil)
	category := seedCategory(t, db, "Spanish/Basics", nil)
	seedFlashcard(t, db, "hola", category)

	w := doJSON(router, "GET", fmt.Sprintf("/api/categories/%d/markdown", category.ID), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".md")
	assert.NotContains(t, w.Header().Get("Content-Disposition"), "/")
	assert.Contains(t, w.Body.String(), "## hola")

	w = doJSON(router, "GET", "/api/categories/999/markdown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDecksController_QueuedExportAndImport(t *testing.T) {
	db := setupTestDB(t)
	queue := &fakeTaskQueue{}
	router := newDecksRouter(t, db, queue, nil)

	w := doJSON(router, "POST", "/api/export", gin.H{"category_id": 3})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"task_id":"task-1"`)

	w = doJSON(router, "POST", "/api/import", gin.H{"dir": "/decks"})
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Len(t, queue.enqueued, 2)
	assert.Equal(t, tasks.ExportDeckTask{CategoryID: 3}, queue.enqueued[0])
	assert.Equal(t, tasks.ImportDeckTask{Dir: "/decks"}, queue.enqueued[1])
}

func TestDecksController_Schedule(t *testing.T) {
	db := setupTestDB(t)

	t.Run("without scheduler", func(t *testing.T) {
		router := newDecksRouter(t, db, nil, nil)

		w := doJSON(router, "GET", "/api/export/schedule", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"running":false`)

		w = doJSON(router, "POST", "/api/export/schedule/run", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("with running scheduler", func(t *testing.T) {
		sched := &fakeScheduler{running: true, last: &scheduler.RunStatus{Status: "success", Message: "ok"}}
		router := newDecksRouter(t, db, nil, sched)

		w := doJSON(router, "GET", "/api/export/schedule", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"running":true`)
		assert.Contains(t, w.Body.String(), `"next_run":"2030-01-01T00:00:00Z"`)
		assert.Contains(t, w.Body.String(), `"status":"success"`)

		w = doJSON(router, "POST", "/api/export/schedule/run", nil)
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, 1, sched.runs)
	})

	t.Run("run fails when not configured", func(t *testing.T) {
		router := newDecksRouter(t, db, nil, &fakeScheduler{})

		w := doJSON(router, "POST", "/api/export/schedule/run", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
