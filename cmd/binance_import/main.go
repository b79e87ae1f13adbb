// Command binance_import pulls an account's fill history from Binance
// futures and feeds it through the same matching/merge pipeline as a CSV
// import. Re-running over an overlapping time range only adds new trades.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"tradejournal/config"
	"tradejournal/internal/adapters/binanceclient"
	"tradejournal/internal/adapters/logger"
	"tradejournal/internal/adapters/sqlite"
	"tradejournal/internal/contracts"
	"tradejournal/internal/journal"
	"tradejournal/internal/store"
)

func main() {
	symbol := flag.String("symbol", "", "futures symbol to fetch (e.g. BTCUSDT)")
	days := flag.Int("days", 7, "how many days of history to fetch")
	flag.Parse()

	if *symbol == "" {
		log.Fatal("FATAL: -symbol is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.New(cfg.LogLevel)
	ctx := context.Background()

	client, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.BinanceAPIKey,
		SecretKey:  cfg.BinanceSecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

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

	end := time.Now()
	start := end.AddDate(0, 0, -*days)
	orders, err := client.AccountTrades(ctx, *symbol, start, end)
	if err != nil {
		log.Fatalf("FATAL: Failed to fetch account trades: %v", err)
	}

	report, err := svc.Import(ctx, orders)
	if err != nil {
		log.Fatalf("FATAL: Import failed: %v", err)
	}
	fmt.Printf("Imported %d fills: %d trades matched, %d new, %d duplicates, %d stored total\n",
		report.OrdersRead, report.TradesMatched, report.NewTrades, report.Duplicates, report.StoredTrades)
}
