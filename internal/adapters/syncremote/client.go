// Package syncremote implements ports.RemoteStore over a plain HTTP
// key-value endpoint. The remote is opaque: it stores and returns whole
// JSON-encoded store snapshots, and all merge logic stays local.
package syncremote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
)

const defaultTimeout = 15 * time.Second

// Config holds configuration for the remote store client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  ports.Logger
}

// Client pushes and pulls journal snapshots to a remote KV endpoint.
type Client struct {
	http   *resty.Client
	logger ports.Logger
}

// New creates a remote store client.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for sync client")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("sync base URL is required: %w", ports.ErrConfigurationError)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	return &Client{http: httpClient, logger: cfg.Logger}, nil
}

// Push uploads a snapshot under the given key, replacing any previous one.
func (c *Client) Push(ctx context.Context, key string, snap domain.StoreSnapshot) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(snap).
		Put("/v1/journals/" + key)
	if err != nil {
		return fmt.Errorf("push to remote store failed: %w: %w", ports.ErrRemoteUnavailable, err)
	}
	if err := classifyStatus(resp.StatusCode()); err != nil {
		return fmt.Errorf("push to remote store rejected (%d): %w", resp.StatusCode(), err)
	}
	c.logger.Info(ctx, "Snapshot pushed to remote store",
		map[string]interface{}{"key": key, "trades": snap.TotalTradeCount()})
	return nil
}

// Pull downloads the snapshot stored under key.
func (c *Client) Pull(ctx context.Context, key string) (domain.StoreSnapshot, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/v1/journals/" + key)
	if err != nil {
		return domain.StoreSnapshot{}, fmt.Errorf("pull from remote store failed: %w: %w", ports.ErrRemoteUnavailable, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return domain.StoreSnapshot{}, ports.ErrSnapshotNotFound
	}
	if err := classifyStatus(resp.StatusCode()); err != nil {
		return domain.StoreSnapshot{}, fmt.Errorf("pull from remote store rejected (%d): %w", resp.StatusCode(), err)
	}

	var snap domain.StoreSnapshot
	if err := json.Unmarshal(resp.Body(), &snap); err != nil {
		return domain.StoreSnapshot{}, fmt.Errorf("%w: %w", ports.ErrSnapshotMalformed, err)
	}
	c.logger.Info(ctx, "Snapshot pulled from remote store",
		map[string]interface{}{"key": key, "trades": snap.TotalTradeCount()})
	return snap, nil
}

func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ports.ErrRemoteAuthFailed
	case code == http.StatusRequestEntityTooLarge || code == http.StatusInsufficientStorage:
		return ports.ErrQuotaExceeded
	case code == http.StatusTooManyRequests:
		return ports.ErrRateLimited
	default:
		return ports.ErrRemoteUnavailable
	}
}
