package app

import (
	"context"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	cron "github.com/robfig/cron/v3"

	"schedlens/internal/config"
	logx "schedlens/pkg/logx"
)

const defaultRefreshCron = "*/5 * * * *"

// watch runs until ctx is cancelled, re-evaluating when the snapshot file
// changes, when the config changes, and on a periodic cron refresh so that
// "today" rolls over even if nothing is written.
func (a *App) watch(ctx context.Context) error {
	cfg := a.cfgMgr.Get()

	if _, err := a.watcher.Load(); err != nil {
		// Keep watching: the sync layer may not have produced the first
		// snapshot yet.
		a.log.Warn("initial snapshot load failed", logx.Err(err))
	}

	snapCh := a.watcher.Subscribe(1)
	defer a.watcher.Unsubscribe(snapCh)
	go func() {
		if err := a.watcher.Watch(ctx); err != nil {
			a.log.Error("snapshot watch stopped", logx.Err(err))
		}
	}()

	cfgCh := a.cfgMgr.Subscribe(1)
	defer a.cfgMgr.Unsubscribe(cfgCh)
	go func() {
		if err := a.cfgMgr.Watch(ctx); err != nil {
			a.log.Error("config watch stopped", logx.Err(err))
		}
	}()

	// Periodic refresh keeps Missed/NotYet verdicts honest as wall-clock
	// time advances past fire times.
	refresh := make(chan struct{}, 1)
	spec := strings.TrimSpace(cfg.Watch.RefreshCron)
	if spec == "" {
		spec = defaultRefreshCron
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		select {
		case refresh <- struct{}{}:
		default:
		}
	}); err != nil {
		return err
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.log.Debug("sd_notify failed", logx.Err(err))
	} else if sent {
		a.log.Debug("sd_notify ready sent")
	}

	a.runPass(ctx, "startup")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-snapCh:
			a.runPass(ctx, "snapshot change")
		case <-refresh:
			a.runPass(ctx, "refresh")
		case newCfg, ok := <-cfgCh:
			if !ok {
				continue
			}
			a.applyConfig(newCfg)
			a.runPass(ctx, "config change")
		}
	}
}

func (a *App) runPass(ctx context.Context, reason string) {
	snap := a.watcher.Current()
	if snap == nil {
		var err error
		if snap, err = a.watcher.Load(); err != nil {
			a.log.Warn("snapshot load failed", logx.Err(err), logx.String("reason", reason))
			return
		}
	}

	now := time.Now()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	a.log.Info("evaluating", logx.String("reason", reason), logx.Int("workflows", len(snap.Workflows)))
	if err := a.evaluate(ctx, snap, date, now, a.opts.View); err != nil {
		a.log.Error("evaluation failed", logx.Err(err), logx.String("reason", reason))
	}
}

// applyConfig handles the hot-reloadable subset: log sinks/levels and the
// notifier knobs. Snapshot path, storage driver and the refresh cron need a
// restart.
func (a *App) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	a.logSvc.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	if a.notifier != nil && cfg.Notify != nil {
		a.notifier.Apply(notifyConfig(cfg.Notify))
	}
	a.log.Info("config applied")
}
