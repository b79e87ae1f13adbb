// Command export writes the stored journal as a flat CSV projection, one
// row per trade, for reporting and spreadsheet use.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"tradejournal/config"
	"tradejournal/internal/adapters/logger"
	"tradejournal/internal/adapters/sqlite"
	"tradejournal/internal/contracts"
	"tradejournal/internal/journal"
	"tradejournal/internal/store"
)

func main() {
	outPath := flag.String("out", "", "output file (default stdout)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
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

	svc, err := journal.NewService(journal.Config{
		StoreOptions: store.Options{
			FuzzyTimeWindow:     cfg.FuzzyTimeWindow,
			FuzzyPriceTolerance: cfg.FuzzyPriceTolerance,
		},
		Currency: cfg.Currency,
	}, appLogger, repo, registry, nil)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize journal service: %v", err)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("FATAL: Failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}
	if err := svc.Export(ctx, out); err != nil {
		log.Fatalf("FATAL: Export failed: %v", err)
	}
}
