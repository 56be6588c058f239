package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"StockPulse/internal/dashboard"
	"StockPulse/internal/model"
	"StockPulse/internal/notifier"
	"StockPulse/internal/recorder"
	"StockPulse/internal/watchlist"
)

// Sender delivers formatted reports.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Publisher receives every completed snapshot.
type Publisher interface {
	Publish(snap *model.Snapshot)
}

// Defaults are the selection values used by scheduled scans.
type Defaults struct {
	Timeframe model.Timeframe
	Tolerance float64
	TopN      int
}

// Scheduler manages the periodic scan and bot commands.
type Scheduler struct {
	Cron       *cron.Cron
	Service    *dashboard.Service
	Watchlist  *watchlist.Manager
	Notifier   Sender
	Recorder   recorder.Recorder
	Publishers []Publisher
	Defaults   Defaults
	Ctx        context.Context

	mu   sync.Mutex
	last *model.Snapshot
}

// NewScheduler creates a new Scheduler. notifier may be nil.
func NewScheduler(ctx context.Context, svc *dashboard.Service, wl *watchlist.Manager, sender Sender, rec recorder.Recorder, defaults Defaults, pubs ...Publisher) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Service:    svc,
		Watchlist:  wl,
		Notifier:   sender,
		Recorder:   rec,
		Publishers: pubs,
		Defaults:   defaults,
		Ctx:        ctx,
	}
}

// RegisterAll registers the scan task.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// Latest returns the most recent snapshot, or nil before the first scan.
func (s *Scheduler) Latest() *model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// RunScanNow scans the watchlist immediately and publishes the result.
func (s *Scheduler) RunScanNow(ctx context.Context) (*model.Snapshot, error) {
	snap, err := s.Service.Refresh(ctx, dashboard.Selection{
		Symbols:   s.Watchlist.List(),
		Timeframe: s.Defaults.Timeframe,
		Tolerance: s.Defaults.Tolerance,
		TopN:      s.Defaults.TopN,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()

	if err := s.Recorder.RecordScan(snap); err != nil {
		log.Error().Err(err).Str("scan_id", snap.ID).Msg("record scan")
	}
	for _, p := range s.Publishers {
		p.Publish(snap)
	}
	return snap, nil
}

func (s *Scheduler) scanTask() {
	log.Info().Msg("running scheduled scan")
	snap, err := s.RunScanNow(s.Ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduled scan")
		s.trySend(fmt.Sprintf("❌ Scan failed: %v", err))
		return
	}
	s.trySend(notifier.FormatSnapshot(snap))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "/scan":
		snap, err := s.RunScanNow(ctx)
		if err != nil {
			return fmt.Sprintf("❌ Scan failed: %v", err)
		}
		return notifier.FormatSnapshot(snap)
	case "/movers":
		snap := s.Latest()
		if snap == nil {
			return "No scan has run yet. Send /scan first."
		}
		return notifier.FormatMovers(snap.Gainers, snap.Losers)
	case "/watchlist":
		return notifier.FormatWatchlist(s.Watchlist.List())
	case "/add", "/remove":
		if len(args) == 0 {
			return fmt.Sprintf("Usage: %s SYMBOL [SYMBOL...]", fields[0])
		}
		update := s.Watchlist.Add
		if strings.EqualFold(fields[0], "/remove") {
			update = s.Watchlist.Remove
		}
		list, err := update(model.SplitSymbols(strings.Join(args, ","))...)
		if err != nil {
			return fmt.Sprintf("❌ Watchlist update failed: %v", err)
		}
		return notifier.FormatWatchlist(list)
	default:
		return helpText
	}
}

const helpText = "Available commands:\n• /scan\n• /movers\n• /watchlist\n• /add SYMBOL\n• /remove SYMBOL"

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
