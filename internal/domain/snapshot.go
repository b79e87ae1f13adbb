package domain

import "time"

// SchemaVersion is the current persisted-store schema version. Version 1
// stores predate reliable side attribution and are migrated on load.
const SchemaVersion = 2

// StoreSnapshot is the portable, round-trippable representation of the
// trade store: the full trade list plus metadata. Reloading a snapshot and
// re-deriving the order-ID and fingerprint sets must reproduce identical
// deduplication behavior, so the snapshot carries trades only and no
// derived state.
type StoreSnapshot struct {
	SchemaVersion int       `json:"schemaVersion"`
	LastUpdated   time.Time `json:"lastUpdated"`
	Trades        []Trade   `json:"trades"`
}

// TotalTradeCount returns the number of trades in the snapshot.
func (s StoreSnapshot) TotalTradeCount() int {
	return len(s.Trades)
}
