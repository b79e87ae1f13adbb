package ports

import (
	"context"
	"time"

	"tradejournal/internal/domain"
)

// TradeRepository defines the interface for durably persisting the trade
// store. The store itself is an in-memory value; the repository only moves
// whole snapshots in and out of durable storage.
type TradeRepository interface {
	// Load reads the persisted snapshot. A missing or unreadable snapshot
	// yields an empty snapshot and no error: corrupted state must fail safe
	// rather than leave the application in a crash loop.
	Load(ctx context.Context) (domain.StoreSnapshot, error)
	// Save overwrites the persisted snapshot. Callers must invoke this only
	// after a successful merge, never mid-computation.
	Save(ctx context.Context, snap domain.StoreSnapshot) error
	// Clear removes all persisted trades. Explicit user action only.
	Clear(ctx context.Context) error
}

// RemoteStore is the opaque key-value endpoint the sync path writes store
// snapshots to and reads them from. The core never interprets the remote's
// storage format beyond the snapshot encoding.
type RemoteStore interface {
	// Push uploads a snapshot under the given key, replacing any previous one.
	Push(ctx context.Context, key string, snap domain.StoreSnapshot) error
	// Pull downloads the snapshot stored under key.
	// Returns ErrSnapshotNotFound if the key has never been pushed.
	Pull(ctx context.Context, key string) (domain.StoreSnapshot, error)
}

// TradeHistorySource fetches filled execution events from an exchange
// account, as an alternative to importing a CSV export. Implementations
// return normalized orders ready for the matcher.
type TradeHistorySource interface {
	// AccountTrades retrieves the account's filled trades for a symbol within
	// the given time range, oldest first.
	AccountTrades(ctx context.Context, symbol string, start, end time.Time) ([]domain.Order, error)
}
