package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/flashmemo/internal/config"
	"github.com/mrlokans/flashmemo/internal/database"
	"github.com/mrlokans/flashmemo/internal/exporters"
	http_controllers "github.com/mrlokans/flashmemo/internal/http"
	"github.com/mrlokans/flashmemo/internal/images"
	"github.com/mrlokans/flashmemo/internal/importers"
	"github.com/mrlokans/flashmemo/internal/scheduler"
	"github.com/mrlokans/flashmemo/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT; SIGKILL can't be caught
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so no task writes after the server is gone
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func newExporterFactory(db *database.Database) func(dir string) *exporters.MarkdownExporter {
	return func(dir string) *exporters.MarkdownExporter {
		return exporters.NewMarkdownExporter(db.Categories(), db.Flashcards(), dir)
	}
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Flashmemo v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	newExporter := newExporterFactory(db)
	importer := importers.NewPipeline(db.Categories(), db.Flashcards())

	routerCfg := http_controllers.RouterConfig{
		Database:   db,
		Categories: db.Categories(),
		Flashcards: db.Flashcards(),
		Importer:   importer,
		ExportDir:  cfg.Export.Dir,
		Version:    version,
	}

	imageStore, err := images.NewStore(cfg.Images.Dir)
	if err != nil {
		log.Printf("WARNING: Failed to initialize image store: %v", err)
	} else {
		log.Printf("Image store initialized at %s", cfg.Images.Dir)
		routerCfg.ImageStore = imageStore
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewExportDeckQueue(func(dir string) tasks.DeckExporter { return newExporter(dir) }, cfg.Export.Dir),
			tasks.NewImportDeckQueue(importer),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		routerCfg.TaskClient = taskClient
	}

	// Periodic export of every root category
	exportScheduler := scheduler.NewExportScheduler(scheduler.ExportConfig{
		Enabled:   cfg.Export.Enabled,
		ExportDir: cfg.Export.Dir,
		Schedule:  cfg.Export.Schedule,
		Snapshot:  cfg.Export.Snapshot,
	}, func(dir string) scheduler.Exporter { return newExporter(dir) })

	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	if err := exportScheduler.Start(schedulerCtx); err != nil {
		log.Printf("WARNING: Failed to start export scheduler: %v", err)
	}
	routerCfg.ExportScheduler = exportScheduler

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		exportScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
