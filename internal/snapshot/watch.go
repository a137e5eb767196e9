package snapshot

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"math/rand"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "schedlens/pkg/logx"
)

// Watcher re-reads the snapshot file when the sync layer rewrites it and
// publishes the result to subscribers. Editors and sync jobs tend to emit
// bursts of write events, so reloads are debounced and content-hashed to
// suppress no-op publishes.
type Watcher struct {
	path string
	log  logx.Logger

	mu       sync.RWMutex
	current  *Snapshot
	lastHash uint64

	// subsMu guards the subscriber list and ensures we never send on a
	// channel that is concurrently being closed in Unsubscribe().
	subsMu sync.Mutex
	subs   []chan *Snapshot
}

func NewWatcher(path string, log logx.Logger) *Watcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Watcher{path: path, log: log}
}

// Load reads the snapshot now and commits it as the current one.
func (w *Watcher) Load() (*Snapshot, error) {
	snap, err := Load(w.path)
	if err != nil {
		return nil, err
	}
	w.commit(snap)
	return snap, nil
}

// Current returns the last successfully loaded snapshot (possibly nil before
// the first Load).
func (w *Watcher) Current() *Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Watcher) Subscribe(buffer int) chan *Snapshot {
	ch := make(chan *Snapshot, buffer)
	w.subsMu.Lock()
	w.subs = append(w.subs, ch)
	w.subsMu.Unlock()
	return ch
}

func (w *Watcher) Unsubscribe(ch chan *Snapshot) {
	if ch == nil {
		return
	}
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for i, s := range w.subs {
		if s == ch {
			last := len(w.subs) - 1
			w.subs[i] = w.subs[last]
			w.subs[last] = nil
			w.subs = w.subs[:last]
			close(ch)
			return
		}
	}
}

func (w *Watcher) commit(snap *Snapshot) {
	w.mu.Lock()
	w.current = snap
	w.lastHash = hashSnapshot(snap)
	w.mu.Unlock()
}

func (w *Watcher) publish(snap *Snapshot) {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for _, ch := range w.subs {
		if ch == nil {
			continue
		}
		// Deliver the latest; if the subscriber is slow, drop one stale
		// item and retry, then give up.
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
				w.log.Debug("snapshot update dropped (subscriber slow)",
					logx.Int("queue_len", len(ch)),
					logx.Int("queue_cap", cap(ch)),
				)
			}
		}
	}
}

func hashSnapshot(snap *Snapshot) uint64 {
	if snap == nil {
		return 0
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}

// Watch blocks until ctx is done, reloading on file change. The fsnotify
// watcher is recreated with backoff when it fails (some platforms stop
// delivering events after editor rename dances).
func (w *Watcher) Watch(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	file := filepath.Base(w.path)

	const (
		restartBackoffBase = 250 * time.Millisecond
		restartBackoffMax  = 5 * time.Second
	)
	backoff := restartBackoffBase
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, func() {
			snap, err := Load(w.path)
			if err != nil {
				w.log.Warn("snapshot reload failed", logx.String("path", w.path), logx.Err(err))
				return
			}

			h := hashSnapshot(snap)
			w.mu.RLock()
			unchanged := h != 0 && h == w.lastHash
			w.mu.RUnlock()
			if unchanged {
				w.log.Debug("snapshot unchanged; skipping publish", logx.String("path", w.path))
				return
			}

			w.commit(snap)
			w.publish(snap)
			w.log.Info("snapshot reloaded",
				logx.String("path", w.path),
				logx.Int("workflows", len(snap.Workflows)),
			)
		})
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		fw, err := fsnotify.NewWatcher()
		if err != nil {
			w.log.Warn("snapshot watch init failed", logx.Err(err), logx.String("dir", dir))
			if !sleepCtx(ctx, jitter(rng, backoff)) {
				return nil
			}
			backoff = min(backoff*2, restartBackoffMax)
			continue
		}
		if err := fw.Add(dir); err != nil {
			w.log.Warn("snapshot watch add failed", logx.Err(err), logx.String("dir", dir))
			_ = fw.Close()
			if !sleepCtx(ctx, jitter(rng, backoff)) {
				return nil
			}
			backoff = min(backoff*2, restartBackoffMax)
			continue
		}
		backoff = restartBackoffBase

	events:
		for {
			select {
			case <-ctx.Done():
				_ = fw.Close()
				return nil
			case ev, ok := <-fw.Events:
				if !ok {
					break events
				}
				if filepath.Base(ev.Name) != file {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					debounce()
				}
				// A removed snapshot is left as-is; the next sync will
				// recreate it and trigger a Create event.
			case err, ok := <-fw.Errors:
				if !ok {
					break events
				}
				w.log.Warn("snapshot watch error", logx.Err(err))
			}
		}

		_ = fw.Close()
		if !sleepCtx(ctx, jitter(rng, backoff)) {
			return nil
		}
		backoff = min(backoff*2, restartBackoffMax)
	}
}

func jitter(rng *rand.Rand, d time.Duration) time.Duration {
	return d + time.Duration(rng.Int63n(int64(d)/4+1))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
