// Package store implements the persistent trade collection and its
// deduplication engine. A Store is an explicit, caller-owned value: it has
// no package-level state and no locking, so concurrent merges must be
// serialized by the owner.
package store

import (
	"fmt"
	"math"
	"time"

	"tradejournal/internal/domain"
)

// Default fuzzy-matching windows for recovering order IDs from legacy
// trades that carry neither order objects nor a parseable composite ID.
const (
	DefaultFuzzyTimeWindow     = 60 * time.Second
	DefaultFuzzyPriceTolerance = 0.01
)

// Options tunes the fuzzy order-ID recovery fallback.
type Options struct {
	FuzzyTimeWindow     time.Duration
	FuzzyPriceTolerance float64
}

func (o Options) withDefaults() Options {
	if o.FuzzyTimeWindow <= 0 {
		o.FuzzyTimeWindow = DefaultFuzzyTimeWindow
	}
	if o.FuzzyPriceTolerance <= 0 {
		o.FuzzyPriceTolerance = DefaultFuzzyPriceTolerance
	}
	return o
}

// MergeResult reports the outcome of one merge operation.
type MergeResult struct {
	New        int // Trades appended to the store
	Duplicates int // Trades rejected as already present
}

// Store is the append-only, deduplicated trade collection. It grows
// monotonically through Merge; Clear is the only way to remove trades.
type Store struct {
	trades       []domain.Trade
	orderIDs     map[string]struct{}
	fingerprints map[string]struct{}
	lastUpdated  time.Time
	opts         Options
}

// New creates an empty store.
func New(opts Options) *Store {
	return &Store{
		orderIDs:     make(map[string]struct{}),
		fingerprints: make(map[string]struct{}),
		opts:         opts.withDefaults(),
	}
}

// FromSnapshot rebuilds a store from a persisted snapshot, re-deriving the
// order-ID and fingerprint sets so deduplication behaves identically to the
// store that produced the snapshot.
func FromSnapshot(snap domain.StoreSnapshot, opts Options) *Store {
	s := New(opts)
	s.lastUpdated = snap.LastUpdated
	for _, t := range snap.Trades {
		s.track(t, s.resolveOrderIDs(t, nil))
	}
	return s
}

// Merge folds newly computed trades into the store. Each incoming trade is
// resolved to its order IDs (directly, from its composite ID, or fuzzily
// against newOrders) and rejected if any resolved ID or its content
// fingerprint is already tracked. Trades with no resolvable IDs are still
// accepted (fail open) and can only be deduplicated by fingerprint later.
//
// Merging the same (trades, orders) against the updated store again yields
// New == 0: the operation is idempotent.
func (s *Store) Merge(newTrades []domain.Trade, newOrders []domain.Order) MergeResult {
	var res MergeResult
	for _, t := range newTrades {
		ids := s.resolveOrderIDs(t, newOrders)
		if s.isDuplicate(t, ids) {
			res.Duplicates++
			continue
		}
		s.track(t, ids)
		res.New++
	}
	if res.New > 0 {
		s.lastUpdated = time.Now().UTC()
	}
	return res
}

// Clear drops every trade and all tracked identities. Explicit user action
// only; merge never removes anything.
func (s *Store) Clear() {
	s.trades = nil
	s.orderIDs = make(map[string]struct{})
	s.fingerprints = make(map[string]struct{})
	s.lastUpdated = time.Now().UTC()
}

// Trades returns a copy of the stored trade list.
func (s *Store) Trades() []domain.Trade {
	out := make([]domain.Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

// Len returns the number of stored trades.
func (s *Store) Len() int { return len(s.trades) }

// LastUpdated returns the time of the last mutating operation.
func (s *Store) LastUpdated() time.Time { return s.lastUpdated }

// Snapshot produces the portable representation for persistence and sync.
func (s *Store) Snapshot() domain.StoreSnapshot {
	return domain.StoreSnapshot{
		SchemaVersion: domain.SchemaVersion,
		LastUpdated:   s.lastUpdated,
		Trades:        s.Trades(),
	}
}

// HasOrderID reports whether an order ID is already tracked.
func (s *Store) HasOrderID(id string) bool {
	_, ok := s.orderIDs[id]
	return ok
}

// Fingerprint derives the content-based identity used when order IDs are
// unavailable: symbol, entry/exit timestamps and cent-rounded prices.
func Fingerprint(t domain.Trade) string {
	return fmt.Sprintf("%s|%d|%d|%d|%d",
		t.Contract,
		t.EntryTime.Unix(),
		t.ExitTime.Unix(),
		int64(math.Round(t.EntryPrice*100)),
		int64(math.Round(t.ExitPrice*100)),
	)
}

func (s *Store) isDuplicate(t domain.Trade, ids []string) bool {
	for _, id := range ids {
		if _, ok := s.orderIDs[id]; ok {
			return true
		}
	}
	_, ok := s.fingerprints[Fingerprint(t)]
	return ok
}

func (s *Store) track(t domain.Trade, ids []string) {
	t.AllOrderIDs = ids
	t.Untracked = len(ids) == 0
	s.trades = append(s.trades, t)
	for _, id := range ids {
		s.orderIDs[id] = struct{}{}
	}
	s.fingerprints[Fingerprint(t)] = struct{}{}
}

// resolveOrderIDs recovers the order IDs behind a trade, in priority order:
// IDs resolved on a previous merge (AllOrderIDs, so fuzzy resolutions
// survive a persistence round-trip), IDs attached to the trade's orders,
// IDs parsed from a composite trade ID, then a fuzzy scan of newOrders by
// time and price proximity. The fuzzy
// fallback is best effort and inherently ambiguous when orders cluster
// tightly; it takes the first order in stream order that falls inside the
// windows, and is used only when nothing direct is recoverable.
func (s *Store) resolveOrderIDs(t domain.Trade, newOrders []domain.Order) []string {
	if len(t.AllOrderIDs) > 0 {
		return t.AllOrderIDs
	}
	if ids := t.OrderIDs(); len(ids) > 0 {
		return ids
	}
	if entryID, exitID, ok := domain.ParseTradeID(t.ID); ok {
		return []string{entryID, exitID}
	}
	if len(newOrders) == 0 {
		return nil
	}
	var ids []string
	if id, ok := s.fuzzyFind(newOrders, t.EntryTime, t.EntryPrice); ok {
		ids = append(ids, id)
	}
	if id, ok := s.fuzzyFind(newOrders, t.ExitTime, t.ExitPrice); ok {
		ids = append(ids, id)
	}
	return ids
}

func (s *Store) fuzzyFind(orders []domain.Order, at time.Time, price float64) (string, bool) {
	for _, o := range orders {
		if o.OrderID == "" || o.PlacingTime.IsZero() {
			continue
		}
		dt := o.PlacingTime.Sub(at)
		if dt < 0 {
			dt = -dt
		}
		if dt > s.opts.FuzzyTimeWindow {
			continue
		}
		if math.Abs(o.FillPrice-price) > s.opts.FuzzyPriceTolerance {
			continue
		}
		return o.OrderID, true
	}
	return "", false
}
