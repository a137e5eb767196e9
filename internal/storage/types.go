package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free file backend (jsonl + snapshot)
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// RunRecord is the audit entry for one evaluation pass.
// Keep it compact and schema-stable.
type RunRecord struct {
	At           time.Time
	Mode         string // "report" | "timeline" | "watch"
	SnapshotPath string
	Domains      int
	Workflows    int
	Completed    int
	Failed       int
	Missed       int
	NotYet       int
	TookMS       int64
	Error        string
}
