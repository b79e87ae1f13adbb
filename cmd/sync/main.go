// Command sync pushes the local journal snapshot to the configured remote
// key-value store or pulls and merges the remote snapshot into the local
// journal. Pull relies on the merge engine's dedup, so syncing the same
// snapshot twice changes nothing.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"tradejournal/config"
	"tradejournal/internal/adapters/logger"
	"tradejournal/internal/adapters/sqlite"
	"tradejournal/internal/adapters/syncremote"
	"tradejournal/internal/contracts"
	"tradejournal/internal/journal"
	"tradejournal/internal/store"
)

func main() {
	push := flag.Bool("push", false, "upload the local journal to the remote store")
	pull := flag.Bool("pull", false, "download the remote journal and merge it locally")
	flag.Parse()

	if *push == *pull {
		log.Fatal("FATAL: exactly one of -push or -pull is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	if cfg.SyncURL == "" {
		log.Fatal("FATAL: SYNC_URL must be configured for sync")
	}
	appLogger := logger.New(cfg.LogLevel)
	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to open journal store: %v", err)
	}
	defer repo.Close()

	registry, err := contracts.NewRegistry(appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize contract registry: %v", err)
	}

	remote, err := syncremote.New(syncremote.Config{
		BaseURL: cfg.SyncURL,
		APIKey:  cfg.SyncAPIKey,
		Logger:  appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize sync client: %v", err)
	}

	svc, err := journal.NewService(journal.Config{
		StoreOptions: store.Options{
			FuzzyTimeWindow:     cfg.FuzzyTimeWindow,
			FuzzyPriceTolerance: cfg.FuzzyPriceTolerance,
		},
		SyncKey:  cfg.SyncKey,
		Currency: cfg.Currency,
	}, appLogger, repo, registry, remote)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize journal service: %v", err)
	}

	if *push {
		if err := svc.PushRemote(ctx); err != nil {
			log.Fatalf("FATAL: Push failed: %v", err)
		}
		fmt.Println("Journal pushed.")
		return
	}

	report, err := svc.PullRemote(ctx)
	if err != nil {
		log.Fatalf("FATAL: Pull failed: %v", err)
	}
	fmt.Printf("Pulled remote journal: %d new, %d duplicates, %d stored total\n",
		report.NewTrades, report.Duplicates, report.StoredTrades)
}
