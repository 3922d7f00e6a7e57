package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
	Stats   *HealthStats      `json:"stats,omitempty"`
}

// HealthStats are the row counts reported with a healthy database, plus
// the number of open live queries.
type HealthStats struct {
	Categories int64 `json:"categories"`
	Flashcards int64 `json:"flashcards"`
	Watchers   int   `json:"watchers"`
}

// HealthChecker is the database surface the health check needs.
type HealthChecker interface {
	Ping(ctx context.Context) error
	GetStats() (totalCategories int64, totalFlashcards int64, err error)
	Watchers() int
}

type HealthController struct {
	db      HealthChecker
	version string
}

func NewHealthController(db HealthChecker, version string) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"
	var stats *HealthStats

	// Check database connectivity
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
			if categories, flashcards, err := h.db.GetStats(); err == nil {
				stats = &HealthStats{Categories: categories, Flashcards: flashcards, Watchers: h.db.Watchers()}
			}
		}
	} else {
		checks["database"] = "not configured"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
		Stats:   stats,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
