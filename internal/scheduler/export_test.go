package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/flashmemo/internal/exporters"
)

type fakeExporter struct {
	mu    sync.Mutex
	dirs  []string
	err   error
	calls int
}

func (f *fakeExporter) factory(dir string) Exporter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirs = append(f.dirs, dir)
	return f
}

func (f *fakeExporter) ExportAll(ctx context.Context) (exporters.ExportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return exporters.ExportResult{}, f.err
	}
	return exporters.ExportResult{CategoriesProcessed: 3, FlashcardsProcessed: 7}, nil
}

func (f *fakeExporter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"0 * * * *", true},
		{"*/15 * * * *", true},
		{"0 0 * * 0", true},
		{"invalid", false},
		{"* * * *", false},
		{"60 * * * *", false},
		{"0 25 * * *", false},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateSchedule(tt.schedule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDescribeSchedule(t *testing.T) {
	assert.Equal(t, "Every hour at :00", DescribeSchedule("0 * * * *"))
	assert.Equal(t, "Daily at midnight", DescribeSchedule("0 0 * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", DescribeSchedule("5 4 * * *"))
}

func TestNextRunTime(t *testing.T) {
	next, err := NextRunTime("0 * * * *")
	require.NoError(t, err)
	assert.True(t, next.After(time.Now()))

	_, err = NextRunTime("invalid")
	assert.Error(t, err)
}

func TestExportScheduler_DisabledDoesNotStart(t *testing.T) {
	fake := &fakeExporter{}
	s := NewExportScheduler(ExportConfig{Enabled: false, ExportDir: t.TempDir(), Schedule: "0 * * * *"}, fake.factory)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestExportScheduler_MissingDirDoesNotStart(t *testing.T) {
	s := NewExportScheduler(ExportConfig{Enabled: true, Schedule: "0 * * * *"}, (&fakeExporter{}).factory)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Error(t, s.RunNow())
}

func TestExportScheduler_InvalidSchedule(t *testing.T) {
	s := NewExportScheduler(ExportConfig{Enabled: true, ExportDir: t.TempDir(), Schedule: "bogus"}, (&fakeExporter{}).factory)

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron schedule")
	assert.False(t, s.IsRunning())
}

func TestExportScheduler_StartStop(t *testing.T) {
	s := NewExportScheduler(ExportConfig{Enabled: true, ExportDir: t.TempDir(), Schedule: "0 0 * * *"}, (&fakeExporter{}).factory)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestExportScheduler_StopsOnContextCancel(t *testing.T) {
	s := NewExportScheduler(ExportConfig{Enabled: true, ExportDir: t.TempDir(), Schedule: "0 0 * * *"}, (&fakeExporter{}).factory)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestExportScheduler_RunNowRecordsSuccess(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeExporter{}
	s := NewExportScheduler(ExportConfig{ExportDir: dir, Schedule: "0 0 * * *"}, fake.factory)

	require.NoError(t, s.RunNow())
	assert.Eventually(t, func() bool { return s.LastRun() != nil }, time.Second, 10*time.Millisecond)

	last := s.LastRun()
	assert.Equal(t, "success", last.Status)
	assert.Contains(t, last.Message, "Exported 3 categories, 7 flashcards")
	assert.Equal(t, 1, fake.callCount())
	assert.Equal(t, []string{dir}, fake.dirs)
}

func TestExportScheduler_RunNowRecordsFailure(t *testing.T) {
	fake := &fakeExporter{err: errors.New("disk full")}
	s := NewExportScheduler(ExportConfig{ExportDir: t.TempDir()}, fake.factory)

	require.NoError(t, s.RunNow())
	assert.Eventually(t, func() bool { return s.LastRun() != nil }, time.Second, 10*time.Millisecond)

	last := s.LastRun()
	assert.Equal(t, "failed", last.Status)
	assert.Contains(t, last.Message, "disk full")
}

func TestExportScheduler_SnapshotUsesSubdirectory(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeExporter{}
	s := NewExportScheduler(ExportConfig{ExportDir: dir, Snapshot: true}, fake.factory)

	require.NoError(t, s.RunNow())
	assert.Eventually(t, func() bool { return s.LastRun() != nil }, time.Second, 10*time.Millisecond)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.dirs, 1)
	assert.NotEqual(t, dir, fake.dirs[0])
	assert.Contains(t, fake.dirs[0], dir)
}
