package http

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/flashmemo/internal/exporters"
	"github.com/mrlokans/flashmemo/internal/importers"
	"github.com/mrlokans/flashmemo/internal/scheduler"
	"github.com/mrlokans/flashmemo/internal/tasks"
	"github.com/mrlokans/flashmemo/internal/utils"
)

// ExportScheduler is the periodic export the decks controller reports on.
type ExportScheduler interface {
	IsRunning() bool
	GetNextRunTime() *time.Time
	LastRun() *scheduler.RunStatus
	RunNow() error
}

// DeckImporter saves converted decks.
type DeckImporter interface {
	Import(ctx context.Context, converter importers.Converter, parentID *uint) (importers.ImportResult, error)
}

// DecksConfig wires the decks controller.
type DecksConfig struct {
	Categories exporters.CategoryReader
	Flashcards exporters.FlashcardReader
	Importer   DeckImporter
	ExportDir  string

	// Optional: export and import run in the background when set
	Tasks TaskQueue
	// Optional: enables the schedule endpoints
	Scheduler ExportScheduler
}

// DecksController exports and imports Markdown decks.
type DecksController struct {
	cfg DecksConfig
}

func NewDecksController(cfg DecksConfig) *DecksController {
	return &DecksController{cfg: cfg}
}

// ExportRequest is the body of an export request.
type ExportRequest struct {
	CategoryID uint   `json:"category_id,omitempty"`
	OutputDir  string `json:"output_dir,omitempty"`
}

// ImportRequest is the body of an import request.
type ImportRequest struct {
	Dir      string `json:"dir" binding:"required"`
	ParentID *uint  `json:"parent_id,omitempty" binding:"omitempty,min=1"`
}

// Export writes a category subtree, or every root category, as a deck.
// With a task queue the export runs in the background and 202 is returned.
// POST /api/export
func (dc *DecksController) Export(c *gin.Context) {
	var req ExportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
	}

	if dc.cfg.Tasks != nil {
		id, err := dc.cfg.Tasks.Enqueue(c.Request.Context(), tasks.ExportDeckTask{
			CategoryID: req.CategoryID,
			OutputDir:  req.OutputDir,
		})
		if err != nil {
			respondInternalError(c, err, "enqueue export")
			return
		}
		respondAccepted(c, "export enqueued", gin.H{"task_id": id})
		return
	}

	dir := req.OutputDir
	if dir == "" {
		dir = filepath.Join(dc.cfg.ExportDir, time.Now().Format("20060102-150405"))
	}
	exporter := exporters.NewMarkdownExporter(dc.cfg.Categories, dc.cfg.Flashcards, dir)

	var result exporters.ExportResult
	var err error
	if req.CategoryID == 0 {
		result, err = exporter.ExportAll(c.Request.Context())
	} else {
		result, err = exporter.ExportCategory(c.Request.Context(), req.CategoryID)
	}
	if err != nil {
		respondInternalError(c, err, "export decks")
		return
	}
	c.JSON(http.StatusOK, result)
}

// DownloadMarkdown returns one category's index file.
// GET /api/categories/:id/markdown
func (dc *DecksController) DownloadMarkdown(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	category, err := dc.cfg.Categories.GetByID(ctx, id)
	if err != nil {
		respondInternalError(c, err, "get category")
		return
	}
	if category == nil {
		respondNotFound(c, "category")
		return
	}

	flashcards, err := dc.cfg.Flashcards.ListByCategories(ctx, []uint{id})
	if err != nil {
		respondInternalError(c, err, "list flashcards")
		return
	}

	exporter := exporters.NewMarkdownExporter(dc.cfg.Categories, dc.cfg.Flashcards, "")
	markdown, err := exporter.GenerateMarkdown(*category, flashcards)
	if err != nil {
		respondInternalError(c, err, "generate markdown")
		return
	}

	filename := utils.SanitizeFilename(category.Name) + ".md"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(markdown))
}

// Import reads a deck directory into the store.
// With a task queue the import runs in the background and 202 is returned.
// POST /api/import
func (dc *DecksController) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if dc.cfg.Tasks != nil {
		id, err := dc.cfg.Tasks.Enqueue(c.Request.Context(), tasks.ImportDeckTask{Dir: req.Dir, ParentID: req.ParentID})
		if err != nil {
			respondInternalError(c, err, "enqueue import")
			return
		}
		respondAccepted(c, "import enqueued", gin.H{"task_id": id})
		return
	}

	if dc.cfg.Importer == nil {
		respondError(c, http.StatusServiceUnavailable, "import is not configured")
		return
	}

	result, err := dc.cfg.Importer.Import(c.Request.Context(), importers.NewMarkdownConverter(req.Dir), req.ParentID)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// ScheduleStatus reports the periodic export.
// GET /api/export/schedule
func (dc *DecksController) ScheduleStatus(c *gin.Context) {
	s := dc.cfg.Scheduler
	if s == nil {
		c.JSON(http.StatusOK, gin.H{"running": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"running":  s.IsRunning(),
		"next_run": s.GetNextRunTime(),
		"last_run": s.LastRun(),
	})
}

// RunScheduledExport starts the periodic export immediately.
// POST /api/export/schedule/run
func (dc *DecksController) RunScheduledExport(c *gin.Context) {
	if dc.cfg.Scheduler == nil {
		respondError(c, http.StatusServiceUnavailable, "export scheduler is not configured")
		return
	}
	if err := dc.cfg.Scheduler.RunNow(); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondAccepted(c, "export started", nil)
}
