// Package app wires the schedlens services together: config manager, logging,
// optional storage, the snapshot watcher, report rendering, and the missed-run
// notifier.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"schedlens/internal/config"
	"schedlens/internal/notify"
	"schedlens/internal/report"
	"schedlens/internal/snapshot"
	"schedlens/internal/storage"
	logx "schedlens/pkg/logx"
)

// Options come from the command line; everything else comes from the config
// file.
type Options struct {
	ConfigPath string
	Date       string // YYYY-MM-DD; empty means today
	Domain     string // timeline view only
	View       string // "report" | "timeline"
	Watch      bool
	Out        io.Writer
}

type App struct {
	opts Options

	cfgMgr *config.Manager
	logSvc *logx.Service
	log    logx.Logger

	store    storage.Store
	watcher  *snapshot.Watcher
	notifier *notify.Service
}

func New(opts Options) (*App, error) {
	if opts.View == "" {
		opts.View = "report"
	}

	cfgMgr := config.NewManager(opts.ConfigPath)
	cfg, err := cfgMgr.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	cfgMgr.SetLogger(log)

	a := &App{
		opts:    opts,
		cfgMgr:  cfgMgr,
		logSvc:  logSvc,
		log:     log,
		watcher: snapshot.NewWatcher(cfg.Snapshot.Path, log),
	}

	if cfg.Storage != nil {
		busy, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
		if err != nil {
			return nil, err
		}
		st, err := storage.Open(storage.Config{
			Driver:      cfg.Storage.Driver,
			Path:        cfg.Storage.Path,
			BusyTimeout: busy,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		a.store = st
	}

	if cfg.Notify != nil && cfg.Notify.Enabled {
		sender, err := notify.NewTelegramSender(cfg.Notify.Token, cfg.Notify.ChatID)
		if err != nil {
			return nil, fmt.Errorf("notify sender: %w", err)
		}
		a.notifier = notify.New(notifyConfig(cfg.Notify), sender, a.store, log)
	}

	return a, nil
}

func notifyConfig(nc *config.NotifyConfig) notify.Config {
	window, _ := config.ParseDurationOrDefault("notify.dedup_window", nc.DedupWindow, 48*time.Hour)
	return notify.Config{Enabled: nc.Enabled, RatePerSec: nc.RatePerSec, DedupWindow: window}
}

// Run executes one evaluation pass, or blocks in watch mode until ctx ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if a.opts.Watch || a.cfgMgr.Get().Watch.Enabled {
		return a.watch(ctx)
	}

	date, err := a.targetDate()
	if err != nil {
		return err
	}
	snap, err := a.watcher.Load()
	if err != nil {
		return err
	}
	return a.evaluate(ctx, snap, date, time.Now(), a.opts.View)
}

func (a *App) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.logSvc.Close()
}

// targetDate resolves -date; the process clock is read once here, at the
// boundary, never inside the evaluator.
func (a *App) targetDate() (time.Time, error) {
	raw := strings.TrimSpace(a.opts.Date)
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -date %q (use YYYY-MM-DD): %w", raw, err)
	}
	return d, nil
}

// evaluate builds and renders the requested view, records the run, and
// alerts on misses. Storage and notify failures are logged, not fatal: the
// rendered view is the primary product.
func (a *App) evaluate(ctx context.Context, snap *snapshot.Snapshot, date, now time.Time, view string) error {
	started := time.Now()
	cfg := a.cfgMgr.Get()

	daily := report.BuildDaily(snap, date, now, cfg.Report.WindowDays)

	var renderErr error
	switch view {
	case "timeline":
		tl := report.BuildTimeline(snap, a.opts.Domain, cfg.Report.ZoomMinutesPerUnit)
		renderErr = report.RenderTimeline(a.opts.Out, tl)
	case "report":
		renderErr = report.RenderDaily(a.opts.Out, daily)
	default:
		return fmt.Errorf("unknown view %q (use report or timeline)", view)
	}
	if renderErr != nil {
		return renderErr
	}

	a.recordRun(ctx, snap, daily, view, started)

	if a.notifier != nil {
		if _, err := a.notifier.AlertMissed(ctx, daily); err != nil && err != notify.ErrDisabled {
			a.log.Warn("missed-run alerting failed", logx.Err(err))
		}
	}
	return nil
}

func (a *App) recordRun(ctx context.Context, snap *snapshot.Snapshot, daily *report.Daily, mode string, started time.Time) {
	if a.store == nil {
		return
	}
	rec := storage.RunRecord{
		At:           started,
		Mode:         mode,
		SnapshotPath: a.cfgMgr.Get().Snapshot.Path,
		Domains:      len(snap.Domains()),
		Workflows:    len(snap.Workflows),
		Completed:    daily.Total.Completed,
		Failed:       daily.Total.Failed,
		Missed:       daily.Total.Missed,
		NotYet:       daily.Total.NotYet,
		TookMS:       time.Since(started).Milliseconds(),
	}
	if err := a.store.AppendRun(ctx, rec); err != nil {
		a.log.Warn("run record append failed", logx.Err(err))
	}
}
