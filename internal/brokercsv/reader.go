// Package brokercsv normalizes broker order-history CSV exports into domain
// orders. It is a thin parsing adapter: per-row problems are counted and
// skipped, never fatal, because real exports are full of cancelled and
// malformed rows.
package brokercsv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
)

// Stats summarizes one parse run.
type Stats struct {
	Rows    int // Data rows seen (excluding the header)
	Orders  int // Rows successfully normalized
	Skipped int // Rows dropped due to parse failures
}

// Reader parses one broker's CSV export format.
type Reader struct {
	broker  string
	mapping Mapping
	logger  ports.Logger
}

// NewReader creates a reader for the given broker tag. Unknown tags use the
// generic mapping.
func NewReader(broker string, logger ports.Logger) (*Reader, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for csv reader: %w", ports.ErrConfigurationError)
	}
	return &Reader{broker: broker, mapping: MappingFor(broker), logger: logger}, nil
}

// ReadFile parses a CSV export from disk.
func (r *Reader) ReadFile(ctx context.Context, path string) ([]domain.Order, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open export file '%s': %w", path, err)
	}
	defer f.Close()
	return r.Read(ctx, f)
}

// Read parses a CSV export stream. The first record must be the header row.
func (r *Reader) Read(ctx context.Context, src io.Reader) ([]domain.Order, Stats, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1 // Exports pad or truncate trailing columns

	header, err := cr.Read()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to read export header: %w", err)
	}
	cols := r.mapping.columnIndex(header)
	if _, ok := cols[fieldSymbol]; !ok {
		return nil, Stats{}, fmt.Errorf("export header has no symbol column: %w", ports.ErrInvalidRequest)
	}

	var (
		orders []domain.Order
		stats  Stats
	)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A mangled row; count it and keep going.
			stats.Rows++
			stats.Skipped++
			continue
		}
		stats.Rows++
		order, ok := r.normalizeRow(ctx, cols, record)
		if !ok {
			stats.Skipped++
			continue
		}
		orders = append(orders, order)
		stats.Orders++
	}

	r.logger.Info(ctx, "Broker export parsed", map[string]interface{}{
		"broker": r.broker, "rows": stats.Rows, "orders": stats.Orders, "skipped": stats.Skipped,
	})
	return orders, stats, nil
}

// normalizeRow converts one CSV record into an order. Rows without a symbol
// or side are unusable and skipped; everything else is normalized leniently
// (the matcher filters non-filled rows later).
func (r *Reader) normalizeRow(ctx context.Context, cols map[field]int, record []string) (domain.Order, bool) {
	get := func(f field) string {
		idx, ok := cols[f]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	symbol := get(fieldSymbol)
	side := strings.ToLower(get(fieldSide))
	if symbol == "" || (side != string(domain.Buy) && side != string(domain.Sell)) {
		return domain.Order{}, false
	}

	qty, err := strconv.ParseInt(strings.ReplaceAll(get(fieldQuantity), ",", ""), 10, 64)
	if err != nil || qty <= 0 {
		return domain.Order{}, false
	}

	order := domain.Order{
		OrderID:     get(fieldOrderID),
		Symbol:      symbol,
		Side:        domain.OrderSide(side),
		Type:        normalizeType(get(fieldType)),
		Quantity:    qty,
		Status:      strings.ToLower(get(fieldStatus)),
		FillPrice:   parseMoney(get(fieldFillPrice)),
		Commission:  parseMoney(get(fieldCommission)),
		Margin:      parseMoney(get(fieldMargin)),
		Leverage:    get(fieldLeverage),
		PlacingTime: r.parseTime(get(fieldPlacingTime)),
		Broker:      r.broker,
	}
	return order, true
}

func (r *Reader) parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range r.mapping.TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// parseMoney parses a numeric field, tolerating currency symbols, thousands
// separators and blank values. Blank or unparseable is zero ("unknown").
func parseMoney(s string) float64 {
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "--" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func normalizeType(s string) domain.OrderType {
	switch strings.ToLower(strings.ReplaceAll(s, " ", "-")) {
	case "limit":
		return domain.OrderTypeLimit
	case "stop", "stop-market":
		return domain.OrderTypeStop
	case "stop-loss", "sl":
		return domain.OrderTypeStopLoss
	case "take-profit", "tp":
		return domain.OrderTypeTakeProfit
	default:
		return domain.OrderTypeMarket
	}
}
