package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"jetton-tracker/config"
	"jetton-tracker/console"
	"jetton-tracker/db"
	"jetton-tracker/logger"
	"jetton-tracker/sheets"
	"jetton-tracker/store"
	"jetton-tracker/tonapi"
	"jetton-tracker/tracker"
)

func main() {
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.LogDir)
	if err != nil {
		stdlog.Fatalf("Failed to set up logging: %v", err)
	}

	windowStart, err := time.ParseInLocation("2006-01-02", cfg.StartDate, tracker.LocalOffset)
	if err != nil {
		log.Fatalf("Invalid START_DATE %q (want YYYY-MM-DD): %v", cfg.StartDate, err)
	}

	gormDB, err := db.Connect(cfg.MySQLUser, cfg.MySQLPassword, cfg.MySQLDatabase, cfg.MySQLHost, cfg.MySQLPort)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close(gormDB)

	var cache tonapi.ResolverCache
	if cfg.RedisAddr != "" {
		cache = tonapi.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		log.Infof("using Redis resolver cache at %s", cfg.RedisAddr)
	} else {
		cache = tonapi.NewMemoryCache()
	}
	client := tonapi.NewClient(cfg.TonAPIKey, cache)

	ctx := context.Background()

	// The tracked token's identity everywhere else in the process.
	jettonRaw, err := client.ResolveAddress(ctx, cfg.JettonAddress)
	if err != nil {
		log.Fatalf("Failed to resolve jetton address %q: %v", cfg.JettonAddress, err)
	}
	log.Infof("tracking jetton %s (%s)", cfg.JettonAddress, jettonRaw)

	st := store.New(gormDB)
	syncer := tracker.NewSyncer(client, client, st, jettonRaw, windowStart, cfg.EventPageLimit, log)
	aggregator := tracker.NewAggregator(st, log)
	registry := tracker.NewRegistry(client, st, log)

	publisher, err := sheets.NewPublisher(ctx, cfg.SheetsCredentialsFile, cfg.SpreadsheetID, cfg.WorksheetName)
	if err != nil {
		log.Fatalf("Failed to initialize Sheets publisher: %v", err)
	}
	publish := func(ctx context.Context) error {
		wallets, err := st.WalletsByVolume()
		if err != nil {
			return err
		}
		return publisher.Publish(ctx, wallets, jettonRaw)
	}
	interval := time.Duration(cfg.UpdateIntervalSeconds) * time.Second
	go backgroundCycle(ctx, interval, syncer, aggregator, publish, log)

	fmt.Println(color.GreenString("Tracker running. Update interval: %s", interval))
	console.New(client, registry, syncer, aggregator, st, publish, log, os.Stdin).Run(ctx)

	log.Info("console closed, shutting down")
}

// cycle is one full update: ingest every wallet, recompute aggregates,
// publish the leaderboard. Errors end the current step only.
func cycle(ctx context.Context, syncer *tracker.Syncer, aggregator *tracker.Aggregator, publish func(ctx context.Context) error, log *logrus.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("update cycle panic: %v", r)
		}
	}()

	log.Info("starting update cycle")
	syncer.SyncAll(ctx)
	if err := aggregator.RecomputeAll(); err != nil {
		log.Errorf("recompute wallet volumes: %v", err)
	}
	if err := publish(ctx); err != nil {
		log.Errorf("publish leaderboard: %v", err)
	}
	log.Info("update cycle finished")
}

// backgroundCycle runs one cycle immediately, then repeats on the interval
// for the process lifetime.
func backgroundCycle(ctx context.Context, interval time.Duration, syncer *tracker.Syncer, aggregator *tracker.Aggregator, publish func(ctx context.Context) error, log *logrus.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		cycle(ctx, syncer, aggregator, publish, log)
		<-ticker.C
	}
}
