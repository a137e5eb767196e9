package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "schedlens/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.runs.jsonl           (append-only JSON Lines run log)
//   - <prefix>.alerts.snapshot.json (periodic snapshot)
//   - <prefix>.alerts.journal.jsonl (append-only journal)
//
// The journal is periodically compacted into the snapshot.
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	runFile *os.File

	alertSnapshotPath string
	alertJournalFile  *os.File
	alerts            map[string]int64 // unix milli

	alertWrites int
}

type alertRecord struct {
	Key   string `json:"key"`
	Until int64  `json:"until"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	runPath := prefix + ".runs.jsonl"
	snapPath := prefix + ".alerts.snapshot.json"
	journalPath := prefix + ".alerts.journal.jsonl"

	rf, err := os.OpenFile(runPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	// Load alert keys from snapshot + journal.
	alerts := map[string]int64{}
	_ = loadAlertSnapshot(snapPath, alerts)
	_ = replayAlertJournal(journalPath, alerts)
	pruneExpiredAlerts(alerts)

	jf, err := os.OpenFile(journalPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		_ = rf.Close()
		return nil, err
	}

	return &fileStore{
		log:               log,
		runFile:           rf,
		alertSnapshotPath: snapPath,
		alertJournalFile:  jf,
		alerts:            alerts,
		alertWrites:       0,
	}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err1, err2 error
	if s.runFile != nil {
		err1 = s.runFile.Close()
		s.runFile = nil
	}
	if s.alertJournalFile != nil {
		err2 = s.alertJournalFile.Close()
		s.alertJournalFile = nil
	}
	if err1 != nil {
		return err1
	}
	return err2
}

func (s *fileStore) AppendRun(ctx context.Context, r RunRecord) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runFile == nil {
		return errors.New("run log closed")
	}
	enc := json.NewEncoder(s.runFile)
	return enc.Encode(r)
}

func (s *fileStore) MarkAlerted(ctx context.Context, key string, until time.Time) error {
	_ = ctx
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	ms := until.UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alertJournalFile == nil {
		return errors.New("alert journal closed")
	}
	if s.alerts == nil {
		s.alerts = map[string]int64{}
	}
	s.alerts[key] = ms

	// Append journal record.
	enc := json.NewEncoder(s.alertJournalFile)
	if err := enc.Encode(alertRecord{Key: key, Until: ms}); err != nil {
		return err
	}
	s.alertWrites++
	if s.alertWrites%1000 == 0 {
		// Best-effort compact.
		if err := s.compactLocked(); err != nil {
			s.log.Debug("alert journal compact failed", logx.Err(err))
		}
	}
	return nil
}

func (s *fileStore) WasAlerted(ctx context.Context, key string) (time.Time, bool, error) {
	_ = ctx
	key = strings.TrimSpace(key)
	if key == "" {
		return time.Time{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alerts == nil {
		return time.Time{}, false, nil
	}
	ms, ok := s.alerts[key]
	if !ok {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

func (s *fileStore) compactLocked() error {
	if s.alerts == nil {
		return nil
	}
	pruneExpiredAlerts(s.alerts)

	tmp := s.alertSnapshotPath + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(s.alerts); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.alertSnapshotPath); err != nil {
		return err
	}
	// Truncate journal.
	if err := s.alertJournalFile.Truncate(0); err != nil {
		return err
	}
	_, err = s.alertJournalFile.Seek(0, 2)
	return err
}

func loadAlertSnapshot(path string, out map[string]int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var m map[string]int64
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return err
	}
	for k, v := range m {
		out[k] = v
	}
	return nil
}

func replayAlertJournal(path string, out map[string]int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		var r alertRecord
		if err := json.Unmarshal(s.Bytes(), &r); err != nil {
			continue
		}
		if r.Key == "" {
			continue
		}
		out[r.Key] = r.Until
	}
	return s.Err()
}

func pruneExpiredAlerts(m map[string]int64) {
	now := time.Now().UnixMilli()
	for k, v := range m {
		if v < now {
			delete(m, k)
		}
	}
}
