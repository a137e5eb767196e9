// Package config loads and hot-reloads the schedlens config file. JSON and
// YAML are both accepted; YAML is coerced to JSON so a single strict decoder
// (DisallowUnknownFields) serves both formats.
package config

import (
	"errors"
	"fmt"
	"strings"

	"schedlens/internal/schedule"
)

type Config struct {
	Logging  LoggingConfig  `json:"logging"`
	Snapshot SnapshotConfig `json:"snapshot"`
	Report   ReportConfig   `json:"report,omitempty"`
	Watch    WatchConfig    `json:"watch,omitempty"`
	Notify   *NotifyConfig  `json:"notify,omitempty"`
	Storage  *StorageConfig `json:"storage,omitempty"`
}

type LoggingConfig struct {
	Level string `json:"level,omitempty"`

	// Console is a pointer so we can distinguish "omitted" (default true)
	// from an explicit false.
	Console *bool         `json:"console,omitempty"`
	File    FileLogConfig `json:"file,omitempty"`
}

type FileLogConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// ConsoleEnabled resolves the Console default.
func (l LoggingConfig) ConsoleEnabled() bool {
	return l.Console == nil || *l.Console
}

// SnapshotConfig points at the workflow snapshot the sync layer maintains.
type SnapshotConfig struct {
	Path string `json:"path"`
}

// ReportConfig controls the two schedule views.
//
// Defaults (when fields are omitted/zero):
//   - window_days: 7
//   - zoom_minutes_per_unit: 60
type ReportConfig struct {
	WindowDays int `json:"window_days,omitempty"`

	// ZoomMinutesPerUnit is the timeline zoom: wall-clock minutes per ruler
	// unit (60/30/15/5 in the UI, any positive value works).
	ZoomMinutesPerUnit int `json:"zoom_minutes_per_unit,omitempty"`
}

// WatchConfig controls long-running mode: re-evaluate when the snapshot file
// changes, plus a periodic refresh so "today" rolls over even without writes.
type WatchConfig struct {
	Enabled bool `json:"enabled"`

	// RefreshCron is a standard cron expression (descriptors allowed).
	// Default "*/5 * * * *".
	RefreshCron string `json:"refresh_cron,omitempty"`
}

// NotifyConfig controls the Telegram digest of missed workflows.
//
// Durations are Go duration strings (e.g. "24h").
type NotifyConfig struct {
	Enabled    bool   `json:"enabled"`
	Token      string `json:"token,omitempty"`
	ChatID     int64  `json:"chat_id,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`

	// DedupWindow suppresses repeat alerts for the same (workflow, date).
	// Default "48h".
	DedupWindow string `json:"dedup_window,omitempty"`
}

// StorageConfig controls the optional persistence layer.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./schedlens_store" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// Validate checks cross-field constraints before a config is committed.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Snapshot.Path) == "" {
		return errors.New("snapshot.path is required")
	}
	if c.Report.WindowDays < 0 {
		return errors.New("report.window_days must be >= 0")
	}
	if c.Report.ZoomMinutesPerUnit < 0 {
		return errors.New("report.zoom_minutes_per_unit must be >= 0")
	}
	if c.Watch.Enabled {
		if spec := strings.TrimSpace(c.Watch.RefreshCron); spec != "" {
			if err := schedule.Validate(spec); err != nil {
				return fmt.Errorf("watch.refresh_cron: %w", err)
			}
		}
	}
	if c.Notify != nil && c.Notify.Enabled {
		if strings.TrimSpace(c.Notify.Token) == "" {
			return errors.New("notify.token is required when notify is enabled")
		}
		if c.Notify.ChatID == 0 {
			return errors.New("notify.chat_id is required when notify is enabled")
		}
		if _, err := ParseDurationField("notify.dedup_window", c.Notify.DedupWindow); err != nil {
			return err
		}
	}
	if c.Storage != nil {
		if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
			return err
		}
	}
	return nil
}
