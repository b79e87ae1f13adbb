package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/internal/domain"
	"tradejournal/internal/store"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a repository backed by a temp database file.
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "journal_test.db")
	repo, err := NewRepository(Config{DBPath: dbPath, Logger: &mockLogger{}})
	require.NoError(t, err)
	return repo, func() { repo.Close() }
}

func sampleTrade(entryID, exitID string) domain.Trade {
	entry := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	exit := entry.Add(25 * time.Minute)
	return domain.Trade{
		ID: domain.ComposeTradeID(entryID, exitID),
		EntryOrder: domain.Order{
			OrderID: entryID, Symbol: "MNQ", Side: domain.Buy, Type: domain.OrderTypeMarket,
			Quantity: 2, OriginalQuantity: 2, FillPrice: 25100.25,
			Status: domain.OrderStatusFilled, PlacingTime: entry, Commission: 1.24, Broker: "tradingview",
		},
		ExitOrder: domain.Order{
			OrderID: exitID, Symbol: "MNQ", Side: domain.Sell, Type: domain.OrderTypeLimit,
			Quantity: 2, OriginalQuantity: 2, FillPrice: 25150.5,
			Status: domain.OrderStatusFilled, PlacingTime: exit, Commission: 1.24, Broker: "tradingview",
		},
		EntryPrice:      25100.25,
		ExitPrice:       25150.5,
		Quantity:        2,
		EntryTime:       entry,
		ExitTime:        exit,
		Side:            domain.Long,
		Contract:        "MNQ",
		Broker:          "tradingview",
		AllOrderIDs:     []string{entryID, exitID},
		PointDifference: 50.25,
		GrossProfit:     201.0,
		TotalCommission: 2.48,
		NetProfit:       198.52,
		Status:          domain.StatusWin,
		Duration:        25 * time.Minute,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	lastUpdated := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	snap := domain.StoreSnapshot{
		SchemaVersion: domain.SchemaVersion,
		LastUpdated:   lastUpdated,
		Trades:        []domain.Trade{sampleTrade("e1", "x1"), sampleTrade("e2", "x2")},
	}
	require.NoError(t, repo.Save(ctx, snap))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SchemaVersion, loaded.SchemaVersion)
	assert.True(t, lastUpdated.Equal(loaded.LastUpdated))
	require.Len(t, loaded.Trades, 2)

	got := loaded.Trades[0]
	want := snap.Trades[0]
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.EntryOrder, got.EntryOrder)
	assert.Equal(t, want.ExitOrder, got.ExitOrder)
	assert.Equal(t, want.AllOrderIDs, got.AllOrderIDs)
	assert.Equal(t, want.Side, got.Side)
	assert.Equal(t, want.NetProfit, got.NetProfit)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Duration, got.Duration)
	assert.True(t, want.EntryTime.Equal(got.EntryTime))
	assert.True(t, want.ExitTime.Equal(got.ExitTime))
}

func TestLoad_EmptyDatabase(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Trades)
	assert.Equal(t, domain.SchemaVersion, snap.SchemaVersion)
}

func TestSave_OverwritesPreviousSnapshot(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.StoreSnapshot{
		Trades: []domain.Trade{sampleTrade("e1", "x1"), sampleTrade("e2", "x2")},
	}))
	require.NoError(t, repo.Save(ctx, domain.StoreSnapshot{
		Trades: []domain.Trade{sampleTrade("e3", "x3")},
	}))

	snap, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Trades, 1)
	assert.Equal(t, "trade_e3_x3", snap.Trades[0].ID)
}

func TestLoad_SkipsCorruptRows(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.StoreSnapshot{
		Trades: []domain.Trade{sampleTrade("e1", "x1"), sampleTrade("e2", "x2")},
	}))

	_, err := repo.db.ExecContext(ctx,
		`UPDATE trades SET entry_order = 'not json' WHERE trade_id = ?`, "trade_e1_x1")
	require.NoError(t, err)

	snap, err := repo.Load(ctx)
	require.NoError(t, err, "row corruption must not surface as an error")
	require.Len(t, snap.Trades, 1)
	assert.Equal(t, "trade_e2_x2", snap.Trades[0].ID)
}

func TestClear(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.StoreSnapshot{
		Trades: []domain.Trade{sampleTrade("e1", "x1")},
	}))
	require.NoError(t, repo.Clear(ctx))

	snap, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Trades)
}

func TestRoundTrip_PreservesDeduplication(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	s := store.New(store.Options{})
	trades := []domain.Trade{sampleTrade("e1", "x1")}
	require.Equal(t, 1, s.Merge(trades, nil).New)
	require.NoError(t, repo.Save(ctx, s.Snapshot()))

	snap, err := repo.Load(ctx)
	require.NoError(t, err)
	restored := store.FromSnapshot(snap, store.Options{})

	res := restored.Merge(trades, nil)
	assert.Zero(t, res.New)
	assert.Equal(t, 1, res.Duplicates)
}

func TestMigration_LegacySideAttribution(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	// A v1 row written by the old pairing logic: legs swapped, so the
	// stored entry_time is later than exit_time and side is wrong.
	trueEntry := domain.Order{OrderID: "e1", Symbol: "ES", Side: domain.Sell, Quantity: 1,
		FillPrice: 6910, Status: domain.OrderStatusFilled,
		PlacingTime: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)}
	trueExit := domain.Order{OrderID: "x1", Symbol: "ES", Side: domain.Buy, Quantity: 1,
		FillPrice: 6900, Status: domain.OrderStatusFilled,
		PlacingTime: time.Date(2026, 3, 2, 9, 45, 0, 0, time.UTC)}
	entryJSON, err := json.Marshal(trueEntry)
	require.NoError(t, err)
	exitJSON, err := json.Marshal(trueExit)
	require.NoError(t, err)

	_, err = repo.db.ExecContext(ctx, `
	INSERT INTO trades (trade_id, contract, side, quantity, entry_price, exit_price,
		entry_time, exit_time, entry_order, exit_order)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"trade_e1_x1", "ES", "long", 1,
		trueExit.FillPrice, trueEntry.FillPrice,
		trueExit.PlacingTime.Format(timeFormat), trueEntry.PlacingTime.Format(timeFormat),
		string(exitJSON), string(entryJSON),
	)
	require.NoError(t, err)

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO journal_meta (key, value) VALUES ('schema_version', '1')
		 ON CONFLICT(key) DO UPDATE SET value = '1'`)
	require.NoError(t, err)

	require.NoError(t, repo.runMigrations(ctx))

	snap, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Trades, 1)

	got := snap.Trades[0]
	assert.Equal(t, domain.Short, got.Side, "side re-derived from the true entry order")
	assert.Equal(t, 6910.0, got.EntryPrice)
	assert.Equal(t, 6900.0, got.ExitPrice)
	assert.True(t, got.EntryTime.Before(got.ExitTime))
	assert.Equal(t, "e1", got.EntryOrder.OrderID)
	assert.Equal(t, "x1", got.ExitOrder.OrderID)

	// Running the migration again must change nothing.
	_, err = repo.db.ExecContext(ctx,
		`UPDATE journal_meta SET value = '1' WHERE key = 'schema_version'`)
	require.NoError(t, err)
	require.NoError(t, repo.runMigrations(ctx))

	again, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, again.Trades, 1)
	assert.Equal(t, got.Side, again.Trades[0].Side)
	assert.Equal(t, got.EntryPrice, again.Trades[0].EntryPrice)
}

func TestMigration_KeepsValidSubsecondRows(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	// Chronologically valid, but string comparison says entry > exit: the
	// exact-second entry ends in 'Z' where the sub-second exit has '.'.
	entry := domain.Order{OrderID: "e1", Symbol: "ES", Side: domain.Buy, Quantity: 1,
		FillPrice: 6900, Status: domain.OrderStatusFilled,
		PlacingTime: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}
	exit := domain.Order{OrderID: "x1", Symbol: "ES", Side: domain.Sell, Quantity: 1,
		FillPrice: 6910, Status: domain.OrderStatusFilled,
		PlacingTime: time.Date(2026, 3, 2, 10, 0, 0, 500_000_000, time.UTC)}
	entryJSON, err := json.Marshal(entry)
	require.NoError(t, err)
	exitJSON, err := json.Marshal(exit)
	require.NoError(t, err)

	entryStr := entry.PlacingTime.Format(timeFormat)
	exitStr := exit.PlacingTime.Format(timeFormat)
	require.Greater(t, entryStr, exitStr, "precondition: strings collate backwards")

	_, err = repo.db.ExecContext(ctx, `
	INSERT INTO trades (trade_id, contract, side, quantity, entry_price, exit_price,
		entry_time, exit_time, entry_order, exit_order)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"trade_e1_x1", "ES", "long", 1,
		entry.FillPrice, exit.FillPrice,
		entryStr, exitStr,
		string(entryJSON), string(exitJSON),
	)
	require.NoError(t, err)

	_, err = repo.db.ExecContext(ctx,
		`UPDATE journal_meta SET value = '1' WHERE key = 'schema_version'`)
	require.NoError(t, err)
	require.NoError(t, repo.runMigrations(ctx))

	snap, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Trades, 1)

	got := snap.Trades[0]
	assert.Equal(t, domain.Long, got.Side, "valid row must not be touched")
	assert.Equal(t, 6900.0, got.EntryPrice)
	assert.Equal(t, 6910.0, got.ExitPrice)
	assert.Equal(t, "e1", got.EntryOrder.OrderID)
	assert.True(t, got.EntryTime.Before(got.ExitTime))
}
