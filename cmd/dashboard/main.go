package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"StockPulse/internal/calculator"
	"StockPulse/internal/collector"
	"StockPulse/internal/config"
	"StockPulse/internal/dashboard"
	"StockPulse/internal/logger"
	"StockPulse/internal/notifier"
	"StockPulse/internal/observability"
	"StockPulse/internal/recorder"
	"StockPulse/internal/scheduler"
	"StockPulse/internal/server"
	"StockPulse/internal/watchlist"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init("stockpulse", cfg.Log.Level, cfg.Log.Pretty)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", cfgPath).Msg("StockPulse starting")

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "finance-go":
		fetcher = collector.NewFinanceGoFetcher()
	case "mock":
		fetcher = &collector.MockFetcher{Price: 100, Bars: 300}
	default:
		yf := collector.NewYahooFetcher(cfg.Proxy)
		if cfg.DataSource.BaseURL != "" {
			yf.BaseURL = cfg.DataSource.BaseURL
		}
		fetcher = yf
	}
	log.Info().Str("source", fetcher.Name()).Int("concurrency", cfg.DataSource.Concurrency).
		Float64("rate_limit", cfg.DataSource.RateLimit).Msg("data source ready")

	// Init collector and dashboard service
	metrics := observability.NewMetrics("stockpulse")
	col := collector.NewCollector(fetcher, calculator.DefaultParams(), cfg.DataSource.Concurrency, cfg.DataSource.RateLimit)
	col.Metrics = metrics
	svc := dashboard.NewService(col, metrics)

	// Init watchlist
	wl, err := watchlist.NewManager(cfg.Watchlist.StateFile, cfg.Watchlist.Symbols)
	if err != nil {
		log.Fatal().Err(err).Msg("init watchlist")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Info().Msg("telegram not configured, notifications disabled")
	}

	// Init scheduler
	hub := server.NewHub(nil)
	defaults := scheduler.Defaults{
		Timeframe: cfg.DefaultTimeframe(),
		Tolerance: cfg.Trend.Tolerance,
		TopN:      cfg.Movers.TopN,
	}
	sched := scheduler.NewScheduler(ctx, svc, wl, sender, rec, defaults, hub)
	if err := sched.RegisterAll(cfg.Schedule.ScanCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, scanning now")
		go func() {
			if _, err := sched.RunScanNow(ctx); err != nil {
				log.Error().Err(err).Msg("startup scan")
			}
		}()
	}

	srv := server.New(ctx, svc, wl, rec, metrics, hub, server.Options{
		Timeframe:    defaults.Timeframe,
		Tolerance:    defaults.Tolerance,
		TopN:         defaults.TopN,
		SymbolColumn: cfg.Upload.SymbolColumn,
		SheetClient:  &http.Client{Timeout: 30 * time.Second},
		SheetHosts:   cfg.Upload.SheetHosts,
	})
	log.Info().Str("addr", cfg.Server.Addr).Str("timeframe", defaults.Timeframe.Label).
		Float64("tolerance", defaults.Tolerance).Msg("StockPulse is running. Press Ctrl+C to stop.")
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		log.Error().Err(err).Msg("http server")
	}

	log.Info().Msg("StockPulse stopped")
}
