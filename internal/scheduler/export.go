package scheduler

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/flashmemo/internal/exporters"
)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Exporter writes every root category subtree.
type Exporter interface {
	ExportAll(ctx context.Context) (exporters.ExportResult, error)
}

// ExporterFactory builds an exporter writing into dir.
type ExporterFactory func(dir string) Exporter

// ExportConfig controls the periodic deck export.
type ExportConfig struct {
	Enabled   bool
	ExportDir string
	Schedule  string
	// Snapshot writes each run into its own timestamped subdirectory.
	Snapshot bool
}

// RunStatus describes the outcome of the last export run.
type RunStatus struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// ExportScheduler runs deck exports on a cron schedule.
type ExportScheduler struct {
	config      ExportConfig
	newExporter ExporterFactory

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc

	// runMu guards run state; jobs never take mu since Stop holds it while draining them.
	runMu     sync.Mutex
	isSyncing bool
	lastRun   *RunStatus
}

// NewExportScheduler creates a new scheduler instance
func NewExportScheduler(config ExportConfig, newExporter ExporterFactory) *ExportScheduler {
	return &ExportScheduler{
		config:      config,
		newExporter: newExporter,
		cron:        cron.New(cron.WithParser(scheduleParser)),
	}
}

// Start begins the scheduler if export is enabled
func (s *ExportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Export scheduler: disabled")
		return nil
	}

	if s.config.ExportDir == "" {
		log.Printf("Export scheduler: export directory not configured, skipping")
		return nil
	}

	if err := ValidateSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runExport()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.config.Schedule)
	log.Printf("Export scheduler: started with schedule '%s' (%s). Next run: %v",
		s.config.Schedule,
		DescribeSchedule(s.config.Schedule),
		nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running export and stops the scheduler.
func (s *ExportScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Export scheduler: stopped")
}

// RunNow triggers an immediate export in the background.
func (s *ExportScheduler) RunNow() error {
	if s.config.ExportDir == "" {
		return fmt.Errorf("export directory not configured")
	}
	go s.runExport()
	return nil
}

// IsRunning returns whether the scheduler is active
func (s *ExportScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// LastRun returns the outcome of the most recent export, or nil.
func (s *ExportScheduler) LastRun() *RunStatus {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	status := *s.lastRun
	return &status
}

// GetNextRunTime returns when the next export will occur
func (s *ExportScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *ExportScheduler) runExport() {
	s.runMu.Lock()
	if s.isSyncing {
		s.runMu.Unlock()
		log.Printf("Export: skipped (previous run still in progress)")
		return
	}
	s.isSyncing = true
	s.runMu.Unlock()

	defer func() {
		s.runMu.Lock()
		s.isSyncing = false
		s.runMu.Unlock()
	}()

	if s.newExporter == nil {
		s.setStatus("failed", "exporter not configured")
		return
	}

	dir := s.config.ExportDir
	if s.config.Snapshot {
		dir = filepath.Join(dir, time.Now().Format("20060102-150405"))
	}

	log.Printf("Export: starting export to %s", dir)
	startTime := time.Now()

	result, err := s.newExporter(dir).ExportAll(context.Background())
	if err != nil {
		errMsg := fmt.Sprintf("Export failed: %v", err)
		log.Printf("Export: %s", errMsg)
		s.setStatus("failed", errMsg)
		return
	}

	successMsg := fmt.Sprintf("Exported %d categories, %d flashcards in %v",
		result.CategoriesProcessed, result.FlashcardsProcessed, time.Since(startTime).Round(time.Millisecond))
	if result.CategoriesFailed > 0 {
		successMsg += fmt.Sprintf(" (%d categories failed)", result.CategoriesFailed)
	}
	log.Printf("Export: %s", successMsg)
	s.setStatus("success", successMsg)
}

func (s *ExportScheduler) setStatus(status, message string) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.lastRun = &RunStatus{Status: status, Message: message, At: time.Now()}
}

// ValidateSchedule validates a five-field cron schedule string
func ValidateSchedule(schedule string) error {
	_, err := scheduleParser.Parse(schedule)
	return err
}

// DescribeSchedule returns a human-readable description of a cron schedule
func DescribeSchedule(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "*/15 * * * *":
		return "Every 15 minutes"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// NextRunTime calculates when the schedule fires next
func NextRunTime(schedule string) (*time.Time, error) {
	sched, err := scheduleParser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}
