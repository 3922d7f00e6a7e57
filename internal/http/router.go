package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	var checker HealthChecker
	if cfg.Database != nil {
		checker = cfg.Database
	}
	health := NewHealthController(checker, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	// Category endpoints
	if cfg.Categories != nil {
		categoriesController := NewCategoriesController(cfg.Categories)
		api.GET("/categories", categoriesController.ListCategories)
		api.POST("/categories", categoriesController.CreateCategory)
		api.GET("/categories/search", categoriesController.SearchCategories)
		api.GET("/categories/stream", categoriesController.StreamCategories)
		api.GET("/categories/:id", categoriesController.GetCategory)
		api.PUT("/categories/:id", categoriesController.UpdateCategory)
		api.DELETE("/categories/:id", categoriesController.DeleteCategory)
		api.GET("/categories/:id/ancestors", categoriesController.GetAncestors)
		api.GET("/categories/:id/descendants", categoriesController.GetDescendants)
		api.POST("/categories/:id/visit", categoriesController.VisitCategory)
		api.GET("/categories/:id/stream", categoriesController.StreamCategory)
	}

	// Flashcard endpoints
	if cfg.Flashcards != nil && cfg.Categories != nil {
		flashcardsController := NewFlashcardsController(cfg.Flashcards, cfg.Categories)
		api.GET("/flashcards", flashcardsController.ListFlashcards)
		api.POST("/flashcards", flashcardsController.CreateFlashcard)
		api.GET("/flashcards/search", flashcardsController.SearchFlashcards)
		api.GET("/flashcards/stream", flashcardsController.StreamFlashcards)
		api.GET("/flashcards/:id", flashcardsController.GetFlashcard)
		api.PUT("/flashcards/:id", flashcardsController.UpdateFlashcard)
		api.DELETE("/flashcards/:id", flashcardsController.DeleteFlashcard)
		api.POST("/flashcards/:id/review", flashcardsController.ReviewFlashcard)

		levelsController := NewLevelsController(cfg.Categories, cfg.Flashcards)
		api.GET("/levels", levelsController.GetLevel)
	}

	// Image endpoints
	if cfg.ImageStore != nil && cfg.Categories != nil && cfg.Flashcards != nil {
		imagesController := NewImagesController(cfg.ImageStore, cfg.Categories, cfg.Flashcards)
		api.GET("/categories/:id/image", imagesController.GetCategoryImage)
		api.PUT("/categories/:id/image", imagesController.PutCategoryImage)
		api.DELETE("/categories/:id/image", imagesController.DeleteCategoryImage)
		api.GET("/flashcards/:id/image", imagesController.GetFlashcardImage)
		api.PUT("/flashcards/:id/image", imagesController.PutFlashcardImage)
		api.DELETE("/flashcards/:id/image", imagesController.DeleteFlashcardImage)
	}

	// Deck export and import endpoints
	if cfg.Categories != nil && cfg.Flashcards != nil {
		decksController := NewDecksController(DecksConfig{
			Categories: cfg.Categories,
			Flashcards: cfg.Flashcards,
			Importer:   cfg.Importer,
			ExportDir:  cfg.ExportDir,
			Tasks:      cfg.TaskClient,
			Scheduler:  cfg.ExportScheduler,
		})
		api.POST("/export", decksController.Export)
		api.GET("/export/schedule", decksController.ScheduleStatus)
		api.POST("/export/schedule/run", decksController.RunScheduledExport)
		api.POST("/import", decksController.Import)
		api.GET("/categories/:id/markdown", decksController.DownloadMarkdown)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
