package matcher

import (
	"context"
	"fmt"
	"sort"

	"tradejournal/internal/contracts"
	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
)

// lot is an open, not-yet-closed slice of a position. Lots for one symbol
// live in a strictly FIFO queue and all share the side of the oldest open
// lot. The originating order is preserved so side attribution survives any
// number of partial fills.
type lot struct {
	quantity int64
	price    float64
	order    domain.Order
}

// Result is the outcome of one matching run over an order stream.
type Result struct {
	Trades  []domain.Trade        // Completed round-trips, pre-pricing
	Open    []domain.OpenPosition // Residual unclosed quantity per symbol
	Skipped int                   // Orders dropped by precondition filtering
}

// Matcher converts a chronological order stream into round-trip trades
// using FIFO lot matching. Symbols are resolved through the contract
// registry, so exports that tag fills with a ticker alias still land in
// the right per-contract queue.
type Matcher struct {
	registry *contracts.Registry
	logger   ports.Logger
}

// New creates a Matcher.
func New(registry *contracts.Registry, logger ports.Logger) (*Matcher, error) {
	if registry == nil {
		return nil, fmt.Errorf("contract registry is required for matcher: %w", ports.ErrConfigurationError)
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for matcher: %w", ports.ErrConfigurationError)
	}
	return &Matcher{registry: registry, logger: logger}, nil
}

// Match runs FIFO matching over the given orders. Orders that are not
// filled executions with a price and timestamp are dropped silently (broker
// exports routinely contain cancelled and rejected rows). An empty or fully
// unmatched stream is a normal outcome, not an error.
func (m *Matcher) Match(ctx context.Context, orders []domain.Order) Result {
	qualifying := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.Filled() {
			qualifying = append(qualifying, o)
		}
	}
	res := Result{Skipped: len(orders) - len(qualifying)}
	if res.Skipped > 0 {
		m.logger.Debug(ctx, "Dropped non-qualifying orders", map[string]interface{}{"skipped": res.Skipped})
	}
	if len(qualifying) == 0 {
		return res
	}

	// Placing time ascending, fill price ascending on ties. The secondary
	// key keeps the ordering identical across runs and environments, which
	// idempotent re-matching depends on.
	sort.SliceStable(qualifying, func(i, j int) bool {
		if qualifying[i].PlacingTime.Equal(qualifying[j].PlacingTime) {
			return qualifying[i].FillPrice < qualifying[j].FillPrice
		}
		return qualifying[i].PlacingTime.Before(qualifying[j].PlacingTime)
	})

	queues := make(map[string][]lot)
	var symbols []string // insertion order, for deterministic residual reporting

	for _, order := range qualifying {
		sym := m.registry.ResolveSymbol(ctx, order.Symbol, order.FillPrice)
		queue := queues[sym]
		if _, seen := queues[sym]; !seen {
			symbols = append(symbols, sym)
		}

		if len(queue) == 0 || queue[0].order.Side == order.Side {
			// Opens or scales into a position.
			queues[sym] = append(queue, lot{quantity: order.Quantity, price: order.FillPrice, order: order})
			continue
		}

		// Opposite side: close lots oldest-first.
		remaining := order.Quantity
		for remaining > 0 && len(queue) > 0 {
			oldest := &queue[0]
			closeQty := remaining
			if oldest.quantity < closeQty {
				closeQty = oldest.quantity
			}
			res.Trades = append(res.Trades, newTrade(sym, *oldest, order, closeQty))
			oldest.quantity -= closeQty
			remaining -= closeQty
			if oldest.quantity == 0 {
				queue = queue[1:]
			}
		}
		if remaining > 0 {
			// The order over-filled the queue and flips the position.
			queue = append(queue, lot{quantity: remaining, price: order.FillPrice, order: order})
		}
		queues[sym] = queue
	}

	for _, sym := range symbols {
		if pos, ok := residual(sym, queues[sym]); ok {
			res.Open = append(res.Open, pos)
		}
	}
	if len(res.Open) > 0 {
		m.logger.Info(ctx, "Residual open positions after matching", map[string]interface{}{"symbols": len(res.Open)})
	}
	return res
}

// newTrade emits one FIFO matching step as a trade. Entry and exit carry
// quantity-adjusted copies of their orders so commission can later be
// apportioned against the parent order's full quantity.
func newTrade(symbol string, l lot, closing domain.Order, closeQty int64) domain.Trade {
	entry := l.order
	entry.OriginalQuantity = entry.ParentQuantity()
	entry.Quantity = closeQty

	exit := closing
	exit.OriginalQuantity = exit.ParentQuantity()
	exit.Quantity = closeQty

	side := domain.Short
	if l.order.Side == domain.Buy {
		side = domain.Long
	}
	broker := l.order.Broker
	if broker == "" {
		broker = closing.Broker
	}

	return domain.Trade{
		ID:         domain.ComposeTradeID(entry.OrderID, exit.OrderID),
		EntryOrder: entry,
		ExitOrder:  exit,
		EntryPrice: l.price,
		ExitPrice:  closing.FillPrice,
		Quantity:   closeQty,
		EntryTime:  l.order.PlacingTime,
		ExitTime:   closing.PlacingTime,
		Side:       side,
		Contract:   symbol,
		Margin:     l.order.Margin,
		Leverage:   l.order.Leverage,
		Broker:     broker,
	}
}

// residual summarizes the unclosed lots left in one symbol's queue.
func residual(symbol string, queue []lot) (domain.OpenPosition, bool) {
	if len(queue) == 0 {
		return domain.OpenPosition{}, false
	}
	pos := domain.OpenPosition{
		Symbol:      symbol,
		OldestEntry: queue[0].order.PlacingTime,
		Side:        domain.Short,
	}
	if queue[0].order.Side == domain.Buy {
		pos.Side = domain.Long
	}
	var weighted float64
	for _, l := range queue {
		pos.Quantity += l.quantity
		weighted += l.price * float64(l.quantity)
	}
	if pos.Quantity > 0 {
		pos.AvgPrice = weighted / float64(pos.Quantity)
	}
	return pos, true
}
