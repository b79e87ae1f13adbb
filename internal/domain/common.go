package domain

// OrderSide represents the side of an order (buy or sell).
type OrderSide string

const (
	Buy  OrderSide = "buy"
	Sell OrderSide = "sell"
)

// Opposite returns the other side.
func (s OrderSide) Opposite() OrderSide {
	if s == Buy {
		return Sell
	}
	return Buy
}

// PositionSide represents the direction of a round-trip trade,
// determined by the side of the order that opened the position.
type PositionSide string

const (
	Long  PositionSide = "long"
	Short PositionSide = "short"
)

// TradeStatus classifies a priced trade by the sign of its net profit.
type TradeStatus string

const (
	StatusWin  TradeStatus = "win"
	StatusLose TradeStatus = "lose"
)

// OrderType represents the execution type of an order.
type OrderType string

const (
	OrderTypeMarket     OrderType = "market"
	OrderTypeLimit      OrderType = "limit"
	OrderTypeStop       OrderType = "stop"
	OrderTypeStopLoss   OrderType = "stop-loss"
	OrderTypeTakeProfit OrderType = "take-profit"
)

// OrderStatusFilled is the only order status that participates in matching.
const OrderStatusFilled = "filled"
