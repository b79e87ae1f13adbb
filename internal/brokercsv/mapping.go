package brokercsv

import (
	"strings"
	"time"
)

// field identifies one canonical order attribute.
type field int

const (
	fieldSymbol field = iota
	fieldSide
	fieldType
	fieldQuantity
	fieldFillPrice
	fieldStatus
	fieldPlacingTime
	fieldOrderID
	fieldCommission
	fieldMargin
	fieldLeverage
)

// Mapping describes how one broker's export headers map onto canonical
// fields, plus the timestamp layouts the broker emits.
type Mapping struct {
	Aliases     map[field][]string
	TimeLayouts []string
}

// columnIndex resolves the mapping against an actual header row. Header
// comparison is case-insensitive and whitespace-trimmed.
func (m Mapping) columnIndex(header []string) map[field]int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}
	cols := make(map[field]int)
	for f, aliases := range m.Aliases {
		for _, alias := range aliases {
			for i, h := range normalized {
				if h == alias {
					cols[f] = i
					break
				}
			}
			if _, ok := cols[f]; ok {
				break
			}
		}
	}
	return cols
}

// MappingFor returns the column mapping for a broker tag. Unknown tags get
// the generic mapping, which covers the common header spellings.
func MappingFor(broker string) Mapping {
	switch strings.ToLower(broker) {
	case "tradingview":
		return tradingViewMapping
	case "tradovate":
		return tradovateMapping
	default:
		return genericMapping
	}
}

var genericMapping = Mapping{
	Aliases: map[field][]string{
		fieldSymbol:      {"symbol", "contract", "instrument", "ticker"},
		fieldSide:        {"side", "action", "buy/sell", "b/s"},
		fieldType:        {"type", "order type"},
		fieldQuantity:    {"qty", "quantity", "filled qty", "fill qty"},
		fieldFillPrice:   {"fill price", "avg fill price", "price", "filled price"},
		fieldStatus:      {"status", "order status"},
		fieldPlacingTime: {"placing time", "time", "date/time", "fill time", "timestamp"},
		fieldOrderID:     {"order id", "orderid", "id"},
		fieldCommission:  {"commission", "fees", "commission & fees"},
		fieldMargin:      {"margin", "initial margin"},
		fieldLeverage:    {"leverage", "lev", "leverage ratio"},
	},
	TimeLayouts: []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02T15:04:05",
		"01/02/2006 15:04:05",
		"01/02/2006 15:04",
	},
}

var tradingViewMapping = Mapping{
	Aliases: map[field][]string{
		fieldSymbol:      {"symbol"},
		fieldSide:        {"side"},
		fieldType:        {"type"},
		fieldQuantity:    {"qty"},
		fieldFillPrice:   {"fill price"},
		fieldStatus:      {"status"},
		fieldPlacingTime: {"placing time"},
		fieldOrderID:     {"order id"},
		fieldCommission:  {"commission"},
		fieldMargin:      {"margin"},
		fieldLeverage:    {"leverage"},
	},
	TimeLayouts: []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
	},
}

var tradovateMapping = Mapping{
	Aliases: map[field][]string{
		fieldSymbol:      {"contract", "symbol"},
		fieldSide:        {"b/s", "side"},
		fieldType:        {"type", "order type"},
		fieldQuantity:    {"filledqty", "qty"},
		fieldFillPrice:   {"avgprice", "avg fill price", "fill price"},
		fieldStatus:      {"status"},
		fieldPlacingTime: {"fill time", "timestamp", "date"},
		fieldOrderID:     {"order id", "orderid"},
		fieldCommission:  {"commission"},
		fieldMargin:      {"margin"},
		fieldLeverage:    {"leverage"},
	},
	TimeLayouts: []string{
		"01/02/2006 15:04:05",
		"2006-01-02 15:04:05",
		time.RFC3339,
	},
}
