// Package journal orchestrates the import pipeline: normalize -> match ->
// price -> merge -> persist, with persistence strictly after a successful
// merge. The pipeline is synchronous and single-owner: concurrent imports
// against one journal must be serialized by the caller.
package journal

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"tradejournal/internal/contracts"
	"tradejournal/internal/domain"
	"tradejournal/internal/export"
	"tradejournal/internal/matcher"
	"tradejournal/internal/pnl"
	"tradejournal/internal/ports"
	"tradejournal/internal/store"
)

// Config holds service-level settings.
type Config struct {
	StoreOptions store.Options // Fuzzy dedup windows
	SyncKey      string        // Remote store key for this journal
	Currency     string        // Reporting currency for exports
}

// Service wires the core engines together behind the repository and
// remote-store ports.
type Service struct {
	cfg        Config
	logger     ports.Logger
	repo       ports.TradeRepository
	remote     ports.RemoteStore // nil when sync is not configured
	calculator *pnl.Calculator
	matcher    *matcher.Matcher
}

// ImportReport is the user-facing outcome of one import: how much was
// read, matched, merged and left open. Partial success is the expected
// steady state with real-world exports.
type ImportReport struct {
	BatchID       string
	OrdersRead    int
	OrdersSkipped int
	TradesMatched int
	NewTrades     int
	Duplicates    int
	StoredTrades  int
	OpenPositions []domain.OpenPosition
}

// NewService creates the journal service. The remote store is optional;
// everything else is required.
func NewService(
	cfg Config,
	logger ports.Logger,
	repo ports.TradeRepository,
	registry *contracts.Registry,
	remote ports.RemoteStore,
) (*Service, error) {
	if logger == nil || repo == nil || registry == nil {
		return nil, fmt.Errorf("missing required dependencies for journal service")
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}

	m, err := matcher.New(registry, logger)
	if err != nil {
		return nil, err
	}
	calc, err := pnl.NewCalculator(registry, logger)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:        cfg,
		logger:     logger,
		repo:       repo,
		remote:     remote,
		calculator: calc,
		matcher:    m,
	}, nil
}

// Import runs the full pipeline over a batch of normalized orders and
// persists the grown store. Re-importing the same or overlapping data is
// safe: the merge engine rejects duplicates and a no-change import writes
// nothing.
func (s *Service) Import(ctx context.Context, orders []domain.Order) (*ImportReport, error) {
	report := &ImportReport{
		BatchID:    uuid.NewString(),
		OrdersRead: len(orders),
	}

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load journal: %w", err)
	}
	st := store.FromSnapshot(snap, s.cfg.StoreOptions)

	matched := s.matcher.Match(ctx, orders)
	report.OrdersSkipped = matched.Skipped
	report.TradesMatched = len(matched.Trades)
	report.OpenPositions = matched.Open

	priced := s.calculator.PriceAll(ctx, matched.Trades)
	merged := st.Merge(priced, orders)
	report.NewTrades = merged.New
	report.Duplicates = merged.Duplicates
	report.StoredTrades = st.Len()

	if merged.New > 0 {
		// The in-memory store stays valid if this write fails; the caller can
		// retry the whole import and dedup will absorb the repeats.
		if err := s.repo.Save(ctx, st.Snapshot()); err != nil {
			return report, fmt.Errorf("merge succeeded but persisting failed: %w", err)
		}
	}

	s.logger.Info(ctx, "Import finished", map[string]interface{}{
		"batchID":    report.BatchID,
		"ordersRead": report.OrdersRead,
		"skipped":    report.OrdersSkipped,
		"matched":    report.TradesMatched,
		"new":        report.NewTrades,
		"duplicates": report.Duplicates,
		"stored":     report.StoredTrades,
		"open":       len(report.OpenPositions),
	})
	return report, nil
}

// Trades returns all stored trades.
func (s *Service) Trades(ctx context.Context) ([]domain.Trade, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Trades, nil
}

// Summary computes aggregate statistics over the stored journal.
func (s *Service) Summary(ctx context.Context) (pnl.Summary, error) {
	trades, err := s.Trades(ctx)
	if err != nil {
		return pnl.Summary{}, err
	}
	return pnl.Summarize(trades), nil
}

// Export writes the stored journal as CSV.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	trades, err := s.Trades(ctx)
	if err != nil {
		return err
	}
	return export.WriteCSV(w, trades, s.cfg.Currency)
}

// ClearAll wipes the persisted journal. Explicit user action only.
func (s *Service) ClearAll(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

// PushRemote uploads the current snapshot to the remote store.
func (s *Service) PushRemote(ctx context.Context) error {
	if s.remote == nil {
		return fmt.Errorf("remote sync is not configured: %w", ports.ErrConfigurationError)
	}
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	return s.remote.Push(ctx, s.cfg.SyncKey, snap)
}

// PullRemote downloads the remote snapshot and merges its trades into the
// local journal. Trades already present locally are dropped by order-ID or
// fingerprint dedup; a pull from an identical remote changes nothing.
func (s *Service) PullRemote(ctx context.Context) (*ImportReport, error) {
	if s.remote == nil {
		return nil, fmt.Errorf("remote sync is not configured: %w", ports.ErrConfigurationError)
	}
	report := &ImportReport{BatchID: uuid.NewString()}

	remoteSnap, err := s.remote.Pull(ctx, s.cfg.SyncKey)
	if err != nil {
		return report, err
	}

	localSnap, err := s.repo.Load(ctx)
	if err != nil {
		return report, err
	}
	st := store.FromSnapshot(localSnap, s.cfg.StoreOptions)

	merged := st.Merge(remoteSnap.Trades, nil)
	report.NewTrades = merged.New
	report.Duplicates = merged.Duplicates
	report.StoredTrades = st.Len()

	if merged.New > 0 {
		if err := s.repo.Save(ctx, st.Snapshot()); err != nil {
			return report, fmt.Errorf("remote merge succeeded but persisting failed: %w", err)
		}
	}
	s.logger.Info(ctx, "Remote pull finished", map[string]interface{}{
		"batchID": report.BatchID, "new": report.NewTrades, "duplicates": report.Duplicates,
	})
	return report, nil
}
