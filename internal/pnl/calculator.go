package pnl

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"tradejournal/internal/contracts"
	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
)

// Calculator prices matched trades: gross/net profit, commission and
// duration, using the contract registry for multipliers and fallback
// commission rates.
type Calculator struct {
	registry *contracts.Registry
	logger   ports.Logger
}

// NewCalculator creates a Calculator.
func NewCalculator(registry *contracts.Registry, logger ports.Logger) (*Calculator, error) {
	if registry == nil {
		return nil, fmt.Errorf("contract registry is required for calculator: %w", ports.ErrConfigurationError)
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for calculator: %w", ports.ErrConfigurationError)
	}
	return &Calculator{registry: registry, logger: logger}, nil
}

// Price returns a copy of the trade with all pricing fields populated.
func (c *Calculator) Price(ctx context.Context, t domain.Trade) domain.Trade {
	multiplier := c.registry.EffectiveMultiplier(ctx, t)

	if t.Side == domain.Short {
		t.PointDifference = t.EntryPrice - t.ExitPrice
	} else {
		t.PointDifference = t.ExitPrice - t.EntryPrice
	}
	t.GrossProfit = t.PointDifference * float64(t.Quantity) * multiplier
	t.TotalCommission = c.commission(t)
	t.NetProfit = t.GrossProfit - t.TotalCommission
	if t.NetProfit > 0 {
		t.Status = domain.StatusWin
	} else {
		t.Status = domain.StatusLose
	}
	t.Duration = t.ExitTime.Sub(t.EntryTime)
	if t.ID == "" {
		t.ID = domain.ComposeTradeID(t.EntryOrder.OrderID, t.ExitOrder.OrderID)
	}
	return t
}

// PriceAll prices every trade in the slice.
func (c *Calculator) PriceAll(ctx context.Context, trades []domain.Trade) []domain.Trade {
	priced := make([]domain.Trade, len(trades))
	for i, t := range trades {
		priced[i] = c.Price(ctx, t)
	}
	return priced
}

// commission computes the round-trip commission for one trade. When the
// export carried commission on either leg, the per-order values are used,
// each scaled by quantity/originalQuantity so a parent order's total is
// apportioned exactly across the partial-fill trades it spawned. Blank
// commissions (typical of paper trading exports) fall back to the registry
// per-side rate for both legs.
func (c *Calculator) commission(t domain.Trade) float64 {
	if t.EntryOrder.Commission != 0 || t.ExitOrder.Commission != 0 {
		entry := apportion(t.EntryOrder.Commission, t.Quantity, t.EntryOrder.ParentQuantity())
		exit := apportion(t.ExitOrder.Commission, t.Quantity, t.ExitOrder.ParentQuantity())
		return entry.Add(exit).InexactFloat64()
	}
	spec := c.registry.SpecFor(t.Contract)
	return spec.CommissionPerSide * 2 * float64(t.Quantity)
}

// apportion scales a parent order's commission to the matched slice.
// Decimal arithmetic keeps slices summing exactly to the parent total.
func apportion(commission float64, qty, parentQty int64) decimal.Decimal {
	if commission == 0 || parentQty <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(commission).
		Mul(decimal.NewFromInt(qty)).
		Div(decimal.NewFromInt(parentQty))
}
