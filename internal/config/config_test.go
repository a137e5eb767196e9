package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{
	  "logging": {"level": "debug"},
	  "snapshot": {"path": "./workflows.json"},
	  "report": {"window_days": 14, "zoom_minutes_per_unit": 15}
	}`)

	m := NewManager(path)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q", cfg.Logging.Level)
	}
	if !cfg.Logging.ConsoleEnabled() {
		t.Fatal("console should default to enabled")
	}
	if cfg.Report.WindowDays != 14 || cfg.Report.ZoomMinutesPerUnit != 15 {
		t.Fatalf("report = %+v", cfg.Report)
	}
	if got := m.Get(); got != cfg {
		t.Fatal("Get() did not return the committed config")
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.yaml", `
logging:
  level: info
  console: false
snapshot:
  path: ./workflows.json
watch:
  enabled: true
  refresh_cron: "*/5 * * * *"
`)

	cfg, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.ConsoleEnabled() {
		t.Fatal("console explicitly disabled")
	}
	if !cfg.Watch.Enabled || cfg.Watch.RefreshCron != "*/5 * * * *" {
		t.Fatalf("watch = %+v", cfg.Watch)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{
	  "snapshot": {"path": "./workflows.json"},
	  "snapshots": {"path": "typo"}
	}`)
	if _, err := NewManager(path).Load(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{name: "minimal", body: `{"snapshot": {"path": "./w.json"}}`, ok: true},
		{name: "missing snapshot path", body: `{"logging": {"level": "info"}}`, ok: false},
		{name: "bad refresh cron", body: `{"snapshot": {"path": "./w.json"}, "watch": {"enabled": true, "refresh_cron": "nope"}}`, ok: false},
		{name: "refresh descriptor", body: `{"snapshot": {"path": "./w.json"}, "watch": {"enabled": true, "refresh_cron": "@hourly"}}`, ok: true},
		{name: "notify without token", body: `{"snapshot": {"path": "./w.json"}, "notify": {"enabled": true, "chat_id": 1}}`, ok: false},
		{name: "notify complete", body: `{"snapshot": {"path": "./w.json"}, "notify": {"enabled": true, "token": "t", "chat_id": 1, "dedup_window": "24h"}}`, ok: true},
		{name: "bad dedup window", body: `{"snapshot": {"path": "./w.json"}, "notify": {"enabled": true, "token": "t", "chat_id": 1, "dedup_window": "day"}}`, ok: false},
		{name: "bad busy timeout", body: `{"snapshot": {"path": "./w.json"}, "storage": {"driver": "sqlite", "path": "./s.db", "busy_timeout": "soon"}}`, ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "config.json", tt.body)
			_, err := NewManager(path).Load()
			if (err == nil) != tt.ok {
				t.Fatalf("Load() err = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestParseDurationOrDefault(t *testing.T) {
	t.Parallel()
	d, err := ParseDurationOrDefault("x", "", 42)
	if err != nil || d != 42 {
		t.Fatalf("default: d=%v err=%v", d, err)
	}
	d, err = ParseDurationOrDefault("x", "10s", 42)
	if err != nil || d.Seconds() != 10 {
		t.Fatalf("explicit: d=%v err=%v", d, err)
	}
	if _, err := ParseDurationOrDefault("x", "-5s", 42); err == nil {
		t.Fatal("expected error for negative duration")
	}
}
