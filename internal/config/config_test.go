package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 2, cfg.Global.ShutdownTimeoutInSeconds)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultImagesDir, cfg.Images.Dir)
	assert.Equal(t, DefaultExportDir, cfg.Export.Dir)
	assert.False(t, cfg.Export.Enabled)
	assert.Equal(t, "0 0 * * *", cfg.Export.Schedule)
	assert.True(t, cfg.Tasks.Enabled)
	assert.Equal(t, 2, cfg.Tasks.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Tasks.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.Tasks.CleanupInterval)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_PATH", "/tmp/cards.db")
	t.Setenv("EXPORT_ENABLED", "true")
	t.Setenv("EXPORT_SCHEDULE", "*/15 * * * *")
	t.Setenv("TASK_WORKERS", "5")
	t.Setenv("TASK_RELEASE_AFTER", "2m")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, "/tmp/cards.db", cfg.Database.Path)
	assert.True(t, cfg.Export.Enabled)
	assert.Equal(t, "*/15 * * * *", cfg.Export.Schedule)
	assert.Equal(t, 5, cfg.Tasks.Workers)
	assert.Equal(t, 2*time.Minute, cfg.Tasks.ReleaseAfter)
}
