package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"MarketCourier/internal/bot"
	"MarketCourier/internal/collector"
	"MarketCourier/internal/config"
	"MarketCourier/internal/notifier"
	"MarketCourier/internal/prefs"
	"MarketCourier/internal/recorder"
	"MarketCourier/internal/scheduler"
	"MarketCourier/internal/snapshot"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] MarketCourier starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.Feed.Mock {
		fetcher = &collector.MockFetcher{Records: collector.DemoRecords()}
	} else {
		fetcher = collector.NewBrsFetcher(cfg.Feed.BaseURL, cfg.Feed.APIKey, cfg.Proxy, cfg.Feed.Timeout)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher, cfg.Feed.Timeout)

	// Init snapshot store
	var store snapshot.Store
	switch cfg.Storage.SnapshotBackend {
	case config.BackendRedis:
		rs, err := snapshot.NewRedisStore(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB)
		if err != nil {
			log.Printf("[WARN] init redis snapshot store failed, using file: %v", err)
			store = snapshot.NewFileStore(cfg.Storage.SnapshotFile)
		} else {
			store = rs
			defer rs.Close()
		}
	default:
		store = snapshot.NewFileStore(cfg.Storage.SnapshotFile)
	}
	snaps := snapshot.NewService(col, store)

	// Init preference store
	ps, err := prefs.NewStore(cfg.Storage.PreferencesFile)
	if err != nil {
		log.Fatalf("[FATAL] init preference store: %v", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Storage.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Storage.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using memory: %v", err)
			rec = recorder.NewMemoryRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewMemoryRecorder()
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Proxy)

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, scheduler.Options{
		Location:            loc,
		InitialRefreshDelay: cfg.Schedule.InitialRefreshDelay,
		Concurrency:         cfg.Schedule.DispatchConcurrency,
		SendRetries:         cfg.Schedule.SendRetries,
	}, col, snaps, ps, tn, rec)
	if err := sched.RegisterAll(cfg.Schedule.HourlyCron, cfg.Schedule.MinuteCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	b := bot.New(ps, col, snaps, loc)
	go tn.StartPolling(ctx, b.Handle)
	log.Println("[INFO] Telegram polling started")

	log.Printf("[INFO] MarketCourier is running (timezone %s). Press Ctrl+C to stop.", loc)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] MarketCourier stopped")
}
