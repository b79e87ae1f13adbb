package domain

import "time"

// Order represents a single execution event from a broker export.
// Orders are immutable once parsed; the matcher works on quantity-adjusted
// copies when a lot is partially closed, never on the original.
type Order struct {
	OrderID  string    // Unique identifier within a broker export
	Symbol   string    // Raw instrument symbol, possibly exchange-prefixed ("CME:ES")
	Side     OrderSide // buy or sell
	Type     OrderType // market, limit, stop, stop-loss, take-profit
	Quantity int64     // Filled quantity (positive)
	// OriginalQuantity is the parent order's full quantity when this order is a
	// partial-fill slice produced by the matcher; zero means the order is whole.
	OriginalQuantity int64
	FillPrice        float64   // Execution price; zero means "not filled"
	Status           string    // Only OrderStatusFilled participates in matching
	PlacingTime      time.Time // Zero value means the export row had no timestamp
	Commission       float64   // Per-order commission; zero means unknown
	Margin           float64   // Margin posted for the order, if reported
	Leverage         string    // Leverage ratio as exported (e.g. "1:20" or "20")
	Broker           string    // Source broker tag
}

// Filled reports whether the order qualifies for matching: it must be a
// filled execution with a price and a timestamp. Cancelled, rejected and
// resting rows in broker exports fail this check and are dropped silently.
func (o Order) Filled() bool {
	return o.Status == OrderStatusFilled && o.FillPrice > 0 && !o.PlacingTime.IsZero()
}

// ParentQuantity returns the full quantity of the order this one was sliced
// from, falling back to the order's own quantity when it is whole.
func (o Order) ParentQuantity() int64 {
	if o.OriginalQuantity > 0 {
		return o.OriginalQuantity
	}
	return o.Quantity
}
