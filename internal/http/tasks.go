package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/flashmemo/internal/tasks"
)

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
	Queues() []string
}

// TasksController handles task queue management endpoints.
type TasksController struct {
	client TaskQueue
}

// NewTasksController creates a new TasksController.
func NewTasksController(client TaskQueue) *TasksController {
	return &TasksController{client: client}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

var taskDescriptions = map[string]string{
	"export_deck": "Export a category subtree, or every root category, as a Markdown deck",
	"import_deck": "Import a Markdown deck directory as categories and flashcards",
}

// ListTaskTypes handles GET /api/tasks/types
// Returns the task types registered on the queue.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	queues := tc.client.Queues()
	types := make([]TaskTypeInfo, 0, len(queues))
	for _, queue := range queues {
		types = append(types, TaskTypeInfo{
			Type:        queue,
			Description: taskDescriptions[queue],
			Queue:       queue,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "get task status")
		return
	}

	statusStr := taskStatusToString(status)
	if status == backlite.TaskStatusNotFound {
		c.JSON(http.StatusNotFound, gin.H{"id": taskID, "status": statusStr})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": statusStr,
	})
}

// RunTaskRequest is the request body for running a task.
type RunTaskRequest struct {
	// CategoryID selects the subtree for export_deck; 0 exports every root
	CategoryID uint `json:"category_id,omitempty"`
	// OutputDir overrides the export directory for export_deck
	OutputDir string `json:"output_dir,omitempty"`
	// Dir is the deck directory for import_deck
	Dir string `json:"dir,omitempty"`
	// ParentID attaches imported decks under an existing category
	ParentID *uint `json:"parent_id,omitempty"`
}

// RunTask handles POST /api/tasks/:type/run
// Manually triggers a task of the specified type.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
	}

	var task backlite.Task
	switch taskType {
	case "export_deck":
		task = tasks.ExportDeckTask{CategoryID: req.CategoryID, OutputDir: req.OutputDir}

	case "import_deck":
		if req.Dir == "" {
			respondBadRequest(c, "dir is required for import_deck task")
			return
		}
		task = tasks.ImportDeckTask{Dir: req.Dir, ParentID: req.ParentID}

	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	tc.enqueue(c, task, taskType)
}

func (tc *TasksController) enqueue(c *gin.Context, task backlite.Task, taskType string) {
	id, err := tc.client.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, err, "enqueue "+taskType)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": id,
		"type":    taskType,
		"message": "task enqueued",
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
