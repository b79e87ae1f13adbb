// Package binanceclient implements ports.TradeHistorySource against the
// Binance USD-M futures API, letting the journal pull an account's fill
// history directly instead of going through a CSV export.
package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
)

const (
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	brokerTag = "binance"
	pageLimit = 1000
)

// Client fetches account trade history from Binance futures.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
}

// Config holds configuration for the Binance client.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Logger     ports.Logger
}

// New creates a Binance history client.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("API keys are required to read account trade history: %w", ports.ErrConfigurationError)
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
	} else {
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance client configured",
		map[string]interface{}{"baseURL": client.BaseURL})

	return &Client{futuresClient: client, logger: cfg.Logger}, nil
}

// AccountTrades retrieves the account's filled trades for a symbol within
// the given time range, oldest first, paging through the API as needed.
// Every returned order is a filled execution in the normalized shape the
// matcher consumes.
func (c *Client) AccountTrades(ctx context.Context, symbol string, start, end time.Time) ([]domain.Order, error) {
	var (
		orders []domain.Order
		fromID int64 = -1
	)
	for {
		svc := c.futuresClient.NewListAccountTradeService().Symbol(symbol).Limit(pageLimit)
		if fromID >= 0 {
			svc = svc.FromID(fromID)
		} else {
			if !start.IsZero() {
				svc = svc.StartTime(start.UnixMilli())
			}
			if !end.IsZero() {
				svc = svc.EndTime(end.UnixMilli())
			}
		}
		page, err := svc.Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, "ListAccountTrades")
		}
		for _, t := range page {
			// The cursor moves past every fill seen, including skipped ones;
			// otherwise a page ending in skipped fills would be re-requested
			// forever.
			fromID = t.ID + 1
			if !end.IsZero() && t.Time > end.UnixMilli() {
				return orders, nil
			}
			order, ok := translateAccountTrade(t)
			if !ok {
				c.logger.Warn(ctx, "Skipping unparseable account trade",
					map[string]interface{}{"symbol": symbol, "tradeID": t.ID})
				continue
			}
			orders = append(orders, order)
		}
		if len(page) < pageLimit {
			break
		}
	}
	c.logger.Info(ctx, "Account trade history fetched",
		map[string]interface{}{"symbol": symbol, "orders": len(orders)})
	return orders, nil
}

// translateAccountTrade maps a Binance fill onto a journal order. The trade
// ID (not the parent order ID) identifies the fill, so two fills of one
// exchange order stay distinct for deduplication.
func translateAccountTrade(t *futures.AccountTrade) (domain.Order, bool) {
	price, err := strconv.ParseFloat(t.Price, 64)
	if err != nil || price <= 0 {
		return domain.Order{}, false
	}
	qtyF, err := strconv.ParseFloat(t.Quantity, 64)
	if err != nil || qtyF <= 0 {
		return domain.Order{}, false
	}
	qty := int64(math.Round(qtyF))
	if qty <= 0 {
		// Sub-unit fill; the journal tracks whole-contract quantities.
		return domain.Order{}, false
	}
	commission, _ := strconv.ParseFloat(t.Commission, 64)

	side := domain.Sell
	if t.Side == futures.SideTypeBuy {
		side = domain.Buy
	}
	return domain.Order{
		OrderID:     fmt.Sprintf("%d-%d", t.OrderID, t.ID),
		Symbol:      t.Symbol,
		Side:        side,
		Type:        domain.OrderTypeMarket,
		Quantity:    qty,
		FillPrice:   price,
		Status:      domain.OrderStatusFilled,
		PlacingTime: time.UnixMilli(t.Time).UTC(),
		Commission:  commission,
		Broker:      brokerTag,
	}, true
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}
	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp outside recvWindow
			mappedErr = ports.ErrTimeout
		case -1022, -2014, -2015: // Bad signature / API key / permissions
			mappedErr = ports.ErrAuthenticationFail
		default:
			mappedErr = ports.ErrRemoteUnavailable
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s canceled: %w", operation, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	}
	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}
