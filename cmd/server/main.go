package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"quant-trader/internal/analysis"
	"quant-trader/internal/broker"
	"quant-trader/internal/config"
	"quant-trader/internal/logger"
	"quant-trader/internal/marketdata"
	"quant-trader/internal/monitor"
	"quant-trader/internal/ratelimit"
	"quant-trader/internal/registry"
	"quant-trader/internal/scheduler"
	"quant-trader/internal/screener"
	"quant-trader/internal/sentiment"
	"quant-trader/internal/store"
	"quant-trader/internal/trade"
	"quant-trader/internal/tradelog"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()

	cfgPath := "config.yaml"
	if v := os.Getenv("TRADER_CONFIG"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	must(err)
	must(logger.Init())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.Open(cfg.Database.Path)
	must(err)
	defer db.Close()

	universe, err := registry.Load(ctx, db, cfg.Universe.Static)
	must(err)

	orderLimiter := ratelimit.New(time.Duration(cfg.Broker.MinOrderSpacingMs) * time.Millisecond)
	gateway := broker.New(db, orderLimiter, time.Duration(cfg.Broker.TimeoutSec)*time.Second)
	quotes := marketdata.NewClient(time.Duration(cfg.Broker.TimeoutSec) * time.Second)

	scorer := sentiment.NewService(quotes,
		time.Duration(cfg.Sentiment.FetchTimeoutSec)*time.Second, cfg.Sentiment.MaxArticles)
	gate := sentiment.Gate{LongMin: cfg.Sentiment.LongMin, ShortMax: cfg.Sentiment.ShortMax}
	thresholds := screener.Thresholds{
		RSILongMin:  cfg.Screening.RSILongMin,
		RSIShortMax: cfg.Screening.RSIShortMax,
		MaxPERatio:  cfg.Screening.MaxPERatio,
	}
	analyzer := analysis.New(quotes, db, db, universe, scorer, gate, thresholds)

	journal := tradelog.New("")
	defer journal.Close()

	positions := monitor.New(gateway, journal, cfg.Monitor.StopLossPct, cfg.Monitor.TakeProfitPct)
	crons := scheduler.NewCron(positions, cfg.Scheduler.MonitorCron)
	must(crons.RegisterDailyRefresh(cfg.Scheduler.DailyCron, analyzer.RunCycle))

	var remote trade.RemoteScheduler
	if cfg.Scheduler.Remote.Enabled {
		if r := scheduler.NewRemote(scheduler.RemoteConfig{
			BaseURL:     cfg.Scheduler.Remote.BaseURL,
			Destination: cfg.Scheduler.Remote.Destination,
			TokenEnv:    cfg.Scheduler.Remote.TokenEnv,
			MonitorCron: cfg.Scheduler.Remote.MonitorCron,
			RefreshCron: cfg.Scheduler.Remote.RefreshCron,
		}); r != nil {
			remote = r
			if err := r.EnsureDailyRefresh(ctx); err != nil {
				logger.Warn(ctx, "Remote refresh schedule failed", "error", err)
			}
		} else {
			logger.Warn(ctx, "Remote scheduling enabled but no token found", "env", cfg.Scheduler.Remote.TokenEnv)
		}
	}
	executor := trade.New(gateway, db, crons, remote, journal)

	crons.Start()
	defer crons.Stop()

	handlers := &server{
		analyzer: analyzer,
		executor: executor,
		monitor:  positions,
		gateway:  gateway,
		universe: universe,
		tokens:   db,
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newRouter(handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(ctx, "Server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	logger.Info(ctx, "Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(shutdownCtx, "Server shutdown", err)
	}
	_ = logger.Shutdown(shutdownCtx)
}
