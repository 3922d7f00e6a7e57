package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Images
		Export
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Images struct {
		Dir string
	}
	Export struct {
		Dir      string
		Enabled  bool   // Periodic export of every root category
		Schedule string // Cron format: "0 0 * * *" = daily
		Snapshot bool   // Write each periodic run into a timestamped subdirectory
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

func NewConfig() *Config {
	return newConfig(viper.New())
}

func newConfig(v *viper.Viper) *Config {
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("images_dir", DefaultImagesDir)

	// Deck export defaults
	v.SetDefault("export_dir", DefaultExportDir)
	v.SetDefault("export_enabled", false)
	v.SetDefault("export_schedule", "0 0 * * *") // Daily at midnight
	v.SetDefault("export_snapshot", false)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Images: Images{
			Dir: v.GetString("IMAGES_DIR"),
		},
		Export: Export{
			Dir:      v.GetString("EXPORT_DIR"),
			Enabled:  v.GetBool("EXPORT_ENABLED"),
			Schedule: v.GetString("EXPORT_SCHEDULE"),
			Snapshot: v.GetBool("EXPORT_SNAPSHOT"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
