package main

import (
	"context"
	"flag"
	"fmt"
	"log" // Standard log only for fatal errors before the logger is set up
	"os"

	"tradejournal/config"
	"tradejournal/internal/adapters/logger"
	"tradejournal/internal/adapters/sqlite"
	"tradejournal/internal/adapters/syncremote"
	"tradejournal/internal/brokercsv"
	"tradejournal/internal/contracts"
	"tradejournal/internal/journal"
	"tradejournal/internal/pnl"
	"tradejournal/internal/ports"
	"tradejournal/internal/store"
)

func main() {
	csvPath := flag.String("csv", "", "path to the broker order-history CSV export")
	push := flag.Bool("push", false, "push the journal to the remote store after a successful import")
	showSummary := flag.Bool("summary", true, "print aggregate statistics after the import")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)
	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize journal store: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing journal store")
		}
	}()

	registry, err := contracts.NewRegistry(appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize contract registry: %v", err)
	}
	if cfg.ContractsFile != "" {
		if err := registry.LoadFile(cfg.ContractsFile); err != nil {
			log.Fatalf("FATAL: Failed to load contracts file: %v", err)
		}
	}

	var remote ports.RemoteStore
	if cfg.SyncURL != "" {
		remote, err = syncremote.New(syncremote.Config{
			BaseURL: cfg.SyncURL,
			APIKey:  cfg.SyncAPIKey,
			Logger:  appLogger,
		})
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize sync client: %v", err)
		}
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

	reader, err := brokercsv.NewReader(cfg.Broker, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize CSV reader: %v", err)
	}
	orders, _, err := reader.ReadFile(ctx, *csvPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to read export file: %v", err)
	}

	report, err := svc.Import(ctx, orders)
	if err != nil {
		log.Fatalf("FATAL: Import failed: %v", err)
	}
	printReport(report)

	if *showSummary {
		summary, err := svc.Summary(ctx)
		if err != nil {
			appLogger.Error(ctx, err, "Failed to compute summary")
		} else {
			printSummary(summary)
		}
	}

	if *push {
		if err := svc.PushRemote(ctx); err != nil {
			// The local journal is already persisted; a failed push is retryable.
			appLogger.Error(ctx, err, "Push to remote store failed")
			os.Exit(1)
		}
	}
}

func printReport(r *journal.ImportReport) {
	fmt.Printf("Imported %d orders (%d skipped): %d trades matched, %d new, %d duplicates, %d stored total\n",
		r.OrdersRead, r.OrdersSkipped, r.TradesMatched, r.NewTrades, r.Duplicates, r.StoredTrades)
	for _, p := range r.OpenPositions {
		fmt.Printf("  open: %s %s x%d @ %.4f (since %s)\n",
			p.Symbol, p.Side, p.Quantity, p.AvgPrice, p.OldestEntry.Format("2006-01-02 15:04:05"))
	}
}

func printSummary(s pnl.Summary) {
	if s.TotalTrades == 0 {
		fmt.Println("No trades in the journal yet.")
		return
	}
	fmt.Printf("Trades: %d (%d wins / %d losses, %.1f%% win rate)\n",
		s.TotalTrades, s.Wins, s.Losses, s.WinRate*100)
	fmt.Printf("Net P&L: %.2f (gross %.2f, best %.2f, worst %.2f)\n",
		s.TotalNetProfit, s.TotalGrossProfit, s.BestTrade, s.WorstTrade)
	fmt.Printf("Profit factor: %.2f  Sharpe: %.2f  Max drawdown: %.2f\n",
		s.ProfitFactor, s.SharpeRatio, s.MaxDrawdown)
	fmt.Printf("Streaks: %d wins / %d losses  Avg duration: %s\n",
		s.MaxConsecutiveWins, s.MaxConsecutiveLosses, s.AvgDuration)
}
