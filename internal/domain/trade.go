package domain

import (
	"fmt"
	"strings"
	"time"
)

// Trade represents a completed round-trip: one FIFO matching step that
// closed part or all of an open lot. A single large order may produce
// several Trades, one per lot it closed.
type Trade struct {
	ID         string       // Deterministic composite of entry/exit order IDs
	EntryOrder Order        // Order (or quantity-adjusted copy) that opened the lot
	ExitOrder  Order        // Order (or quantity-adjusted copy) that closed it
	EntryPrice float64      // Price at which the lot was opened
	ExitPrice  float64      // Price at which the lot was closed
	Quantity   int64        // Quantity closed in this matching step
	EntryTime  time.Time    // Timestamp of the lot-opening order
	ExitTime   time.Time    // Timestamp of the closing order
	Side       PositionSide // long if the entry order was a buy, short otherwise
	Contract   string       // Normalized symbol, exchange prefix stripped
	Margin     float64      // Margin from the entry order, if reported
	Leverage   string       // Leverage ratio from the entry order
	Broker     string       // Source broker tag

	// AllOrderIDs lists every order ID the deduplication engine resolved for
	// this trade when it was merged. Untracked marks a trade that resolved to
	// no IDs at all; such trades deduplicate by fingerprint only.
	AllOrderIDs []string
	Untracked   bool

	// Pricing fields, set by the P&L calculator.
	PointDifference float64       // Signed price move in the trade's favor
	GrossProfit     float64       // PointDifference x Quantity x multiplier
	TotalCommission float64       // Both legs, apportioned for partial fills
	NetProfit       float64       // GrossProfit - TotalCommission
	Status          TradeStatus   // win if NetProfit > 0
	Duration        time.Duration // ExitTime - EntryTime
}

// TradeIDPrefix is the leading token of a composite trade ID.
const TradeIDPrefix = "trade"

// ComposeTradeID builds the deterministic trade identity from the entry and
// exit order IDs. Stable across re-runs over the same data, which the
// deduplication engine depends on.
func ComposeTradeID(entryOrderID, exitOrderID string) string {
	return fmt.Sprintf("%s_%s_%s", TradeIDPrefix, entryOrderID, exitOrderID)
}

// ParseTradeID recovers the entry and exit order IDs from a composite trade
// ID of the form "trade_{entryID}_{exitID}". Returns ok=false for any other
// shape, including IDs whose embedded order IDs themselves contain
// underscores (those are ambiguous and treated as unparseable).
func ParseTradeID(id string) (entryOrderID, exitOrderID string, ok bool) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[0] != TradeIDPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// OrderIDs returns the order IDs directly attached to the trade, entry leg
// first. IDs embedded in the composite trade ID are not consulted here; the
// store's identity resolution handles that fallback.
func (t Trade) OrderIDs() []string {
	var ids []string
	if t.EntryOrder.OrderID != "" {
		ids = append(ids, t.EntryOrder.OrderID)
	}
	if t.ExitOrder.OrderID != "" {
		ids = append(ids, t.ExitOrder.OrderID)
	}
	return ids
}

// OpenPosition reports residual open quantity left in a symbol's lot queue
// after matching. It is informational, not an error: a journal over a live
// account routinely ends with positions still open.
type OpenPosition struct {
	Symbol      string       // Normalized symbol
	Side        PositionSide // Direction of the open lots
	Quantity    int64        // Total unclosed quantity
	AvgPrice    float64      // Quantity-weighted average entry price
	OldestEntry time.Time    // PlacingTime of the oldest open lot
}
