// Package sqlite implements ports.TradeRepository over a local SQLite
// database. The repository moves whole store snapshots in and out; all
// deduplication logic lives in the store package.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const timeFormat = time.RFC3339Nano

// Repository implements the ports.TradeRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/journal.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// The store is single-owner; one connection keeps SQLite happy.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	if err := repo.runMigrations(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to migrate database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	cfg.Logger.Info(context.Background(), "SQLite journal store ready", map[string]interface{}{"path": dbPath})
	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		trade_id TEXT NOT NULL,
		contract TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		entry_time TEXT NOT NULL,
		exit_time TEXT NOT NULL,
		entry_order TEXT NOT NULL DEFAULT '{}',
		exit_order TEXT NOT NULL DEFAULT '{}',
		all_order_ids TEXT NOT NULL DEFAULT '',
		untracked INTEGER NOT NULL DEFAULT 0,
		margin REAL NOT NULL DEFAULT 0,
		leverage TEXT NOT NULL DEFAULT '',
		broker TEXT NOT NULL DEFAULT '',
		point_difference REAL NOT NULL DEFAULT 0,
		gross_profit REAL NOT NULL DEFAULT 0,
		total_commission REAL NOT NULL DEFAULT 0,
		net_profit REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT '',
		duration_ns INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS journal_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trades_contract_exit_time ON trades (contract, exit_time);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads the persisted snapshot. Any failure reading or decoding the
// persisted state yields an empty snapshot with a warning instead of an
// error: a corrupt journal must not put the application in a crash loop.
func (r *Repository) Load(ctx context.Context) (domain.StoreSnapshot, error) {
	snap := domain.StoreSnapshot{SchemaVersion: domain.SchemaVersion}

	if v, err := r.metaValue(ctx, "last_updated"); err == nil && v != "" {
		if t, perr := time.Parse(timeFormat, v); perr == nil {
			snap.LastUpdated = t
		}
	}

	rows, err := r.db.QueryContext(ctx, `
	SELECT trade_id, contract, side, quantity, entry_price, exit_price,
	       entry_time, exit_time, entry_order, exit_order, all_order_ids,
	       untracked, margin, leverage, broker, point_difference,
	       gross_profit, total_commission, net_profit, status, duration_ns
	FROM trades ORDER BY exit_time, entry_time, trade_id`)
	if err != nil {
		r.logger.Warn(ctx, "Persisted journal unreadable, starting from an empty store",
			map[string]interface{}{"error": err.Error()})
		return domain.StoreSnapshot{SchemaVersion: domain.SchemaVersion}, nil
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			r.logger.Warn(ctx, "Skipping unreadable trade row", map[string]interface{}{"error": err.Error()})
			continue
		}
		snap.Trades = append(snap.Trades, t)
	}
	if err := rows.Err(); err != nil {
		r.logger.Warn(ctx, "Persisted journal truncated while reading, starting from an empty store",
			map[string]interface{}{"error": err.Error()})
		return domain.StoreSnapshot{SchemaVersion: domain.SchemaVersion}, nil
	}

	r.logger.Debug(ctx, "Journal snapshot loaded", map[string]interface{}{"trades": len(snap.Trades)})
	return snap, nil
}

// Save overwrites the persisted snapshot atomically. Callers invoke this
// only after a successful merge.
func (r *Repository) Save(ctx context.Context, snap domain.StoreSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save transaction: %w", ports.ErrDBConnection)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trades`); err != nil {
		return fmt.Errorf("failed to clear trades for save: %w", err)
	}

	const insert = `
	INSERT INTO trades (trade_id, contract, side, quantity, entry_price, exit_price,
		entry_time, exit_time, entry_order, exit_order, all_order_ids, untracked,
		margin, leverage, broker, point_difference, gross_profit, total_commission,
		net_profit, status, duration_ns)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare trade insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range snap.Trades {
		entryJSON, err := json.Marshal(t.EntryOrder)
		if err != nil {
			return fmt.Errorf("failed to encode entry order for trade %s: %w", t.ID, err)
		}
		exitJSON, err := json.Marshal(t.ExitOrder)
		if err != nil {
			return fmt.Errorf("failed to encode exit order for trade %s: %w", t.ID, err)
		}
		untracked := 0
		if t.Untracked {
			untracked = 1
		}
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.Contract, string(t.Side), t.Quantity, t.EntryPrice, t.ExitPrice,
			t.EntryTime.UTC().Format(timeFormat), t.ExitTime.UTC().Format(timeFormat),
			string(entryJSON), string(exitJSON), strings.Join(t.AllOrderIDs, ","), untracked,
			t.Margin, t.Leverage, t.Broker, t.PointDifference, t.GrossProfit,
			t.TotalCommission, t.NetProfit, string(t.Status), int64(t.Duration),
		); err != nil {
			return fmt.Errorf("failed to insert trade %s: %w", t.ID, err)
		}
	}

	if err := setMeta(ctx, tx, "schema_version", fmt.Sprintf("%d", domain.SchemaVersion)); err != nil {
		return err
	}
	lastUpdated := snap.LastUpdated
	if lastUpdated.IsZero() {
		lastUpdated = time.Now().UTC()
	}
	if err := setMeta(ctx, tx, "last_updated", lastUpdated.UTC().Format(timeFormat)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit journal save: %w", err)
	}
	r.logger.Debug(ctx, "Journal snapshot saved", map[string]interface{}{"trades": len(snap.Trades)})
	return nil
}

// Clear removes all persisted trades.
func (r *Repository) Clear(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin clear transaction: %w", ports.ErrDBConnection)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM trades`); err != nil {
		return fmt.Errorf("failed to clear trades: %w", err)
	}
	if err := setMeta(ctx, tx, "last_updated", time.Now().UTC().Format(timeFormat)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit journal clear: %w", err)
	}
	r.logger.Info(ctx, "Journal cleared")
	return nil
}

func (r *Repository) metaValue(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM journal_meta WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

func setMeta(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
	INSERT INTO journal_meta (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to update journal metadata '%s': %w", key, err)
	}
	return nil
}

func scanTrade(rows *sql.Rows) (domain.Trade, error) {
	var (
		t                   domain.Trade
		side, status        string
		entryTime, exitTime string
		entryJSON, exitJSON string
		allOrderIDs         string
		untracked, duration int64
	)
	if err := rows.Scan(&t.ID, &t.Contract, &side, &t.Quantity, &t.EntryPrice, &t.ExitPrice,
		&entryTime, &exitTime, &entryJSON, &exitJSON, &allOrderIDs, &untracked,
		&t.Margin, &t.Leverage, &t.Broker, &t.PointDifference, &t.GrossProfit,
		&t.TotalCommission, &t.NetProfit, &status, &duration); err != nil {
		return domain.Trade{}, err
	}

	t.Side = domain.PositionSide(side)
	t.Status = domain.TradeStatus(status)
	t.Duration = time.Duration(duration)
	t.Untracked = untracked != 0
	if allOrderIDs != "" {
		t.AllOrderIDs = strings.Split(allOrderIDs, ",")
	}

	var err error
	if t.EntryTime, err = time.Parse(timeFormat, entryTime); err != nil {
		return domain.Trade{}, fmt.Errorf("bad entry_time '%s': %w", entryTime, err)
	}
	if t.ExitTime, err = time.Parse(timeFormat, exitTime); err != nil {
		return domain.Trade{}, fmt.Errorf("bad exit_time '%s': %w", exitTime, err)
	}
	if err = json.Unmarshal([]byte(entryJSON), &t.EntryOrder); err != nil {
		return domain.Trade{}, fmt.Errorf("bad entry order payload: %w", err)
	}
	if err = json.Unmarshal([]byte(exitJSON), &t.ExitOrder); err != nil {
		return domain.Trade{}, fmt.Errorf("bad exit order payload: %w", err)
	}
	return t, nil
}
