// Package notify delivers a Telegram digest of missed workflow runs after an
// evaluation pass. Delivery is best-effort: failures are logged, never
// propagated into the evaluation itself.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"schedlens/internal/report"
	"schedlens/internal/schedule"
	"schedlens/internal/storage"
	logx "schedlens/pkg/logx"
)

var ErrDisabled = errors.New("notifier disabled")

// Sender abstracts the delivery channel so tests don't need a bot token.
type Sender interface {
	SendText(ctx context.Context, text string) error
}

type Config struct {
	Enabled     bool
	RatePerSec  int
	DedupWindow time.Duration
}

// Service dedups and rate-limits missed-run digests. A (domain, workflow,
// date) triple is alerted once per dedup window; suppression state lives in
// the store when one is configured and falls back to an in-memory map.
type Service struct {
	log    logx.Logger
	sender Sender
	store  storage.Store

	mu      sync.Mutex
	cfg     Config
	limiter *rate.Limiter

	// In-memory dedup fallback: key -> suppress until.
	dmu   sync.Mutex
	dedup map[string]time.Time
}

const dedupMaxEntries = 2000

func New(cfg Config, sender Sender, store storage.Store, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{log: log, sender: sender, store: store, dedup: map[string]time.Time{}}
	s.applyLocked(cfg)
	return s
}

func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	s.applyLocked(cfg)
	s.mu.Unlock()
}

func (s *Service) applyLocked(cfg Config) {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = 48 * time.Hour
	}
	s.cfg = cfg
	// Token bucket: burst = rate per sec, so short spikes don't block too hard.
	s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
}

// AlertMissed sends one digest covering the not-yet-alerted missed
// occurrences of the report. It returns the number of occurrences included.
func (s *Service) AlertMissed(ctx context.Context, d *report.Daily) (int, error) {
	s.mu.Lock()
	cfg := s.cfg
	limiter := s.limiter
	s.mu.Unlock()

	if !cfg.Enabled || s.sender == nil {
		return 0, ErrDisabled
	}

	now := time.Now()
	until := now.Add(cfg.DedupWindow)

	var (
		lines []string
		keys  []string
	)
	for _, row := range d.Missed() {
		for _, cell := range row.Cells {
			if cell.Status != schedule.StatusMissed {
				continue
			}
			key := fmt.Sprintf("%s/%s/%s", row.Domain, row.Name, cell.Date.Format("2006-01-02"))
			if s.suppressed(ctx, key, now) {
				continue
			}
			lines = append(lines, fmt.Sprintf("• %s/%s missed its %s run (%s)",
				row.Domain, row.Name, cell.Date.Format("2006-01-02"), row.Label))
			keys = append(keys, key)
		}
	}
	if len(lines) == 0 {
		return 0, nil
	}

	if err := limiter.Wait(ctx); err != nil {
		return 0, err
	}

	msg := fmt.Sprintf("⚠️ %d missed workflow run(s)\n%s", len(lines), strings.Join(lines, "\n"))
	if err := s.sender.SendText(ctx, msg); err != nil {
		s.log.Warn("missed-run digest send failed", logx.Err(err), logx.Int("occurrences", len(lines)))
		return 0, err
	}

	for _, key := range keys {
		s.markAlerted(ctx, key, until)
	}
	s.log.Info("missed-run digest sent", logx.Int("occurrences", len(lines)))
	return len(lines), nil
}

func (s *Service) suppressed(ctx context.Context, key string, now time.Time) bool {
	if s.store != nil {
		until, ok, err := s.store.WasAlerted(ctx, key)
		if err == nil {
			return ok && until.After(now)
		}
		s.log.Debug("alert dedup lookup failed; using memory", logx.Err(err))
	}
	s.dmu.Lock()
	defer s.dmu.Unlock()
	until, ok := s.dedup[key]
	return ok && until.After(now)
}

func (s *Service) markAlerted(ctx context.Context, key string, until time.Time) {
	if s.store != nil {
		if err := s.store.MarkAlerted(ctx, key, until); err == nil {
			return
		}
	}
	s.dmu.Lock()
	defer s.dmu.Unlock()
	if len(s.dedup) >= dedupMaxEntries {
		// Drop expired entries; if everything is live, accept the overflow
		// rather than forgetting a suppression.
		now := time.Now()
		for k, v := range s.dedup {
			if v.Before(now) {
				delete(s.dedup, k)
			}
		}
	}
	s.dedup[key] = until
}

// ---- Telegram sender ----

type telegramSender struct {
	bot    *tele.Bot
	chatID int64
}

// NewTelegramSender builds a send-only bot client (no poller).
func NewTelegramSender(token string, chatID int64) (Sender, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	bot, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, err
	}
	return &telegramSender{bot: bot, chatID: chatID}, nil
}

func (t *telegramSender) SendText(ctx context.Context, text string) error {
	_ = ctx // telebot manages its own request timeouts
	_, err := t.bot.Send(&tele.Chat{ID: t.chatID}, text, &tele.SendOptions{DisableWebPagePreview: true})
	return err
}
