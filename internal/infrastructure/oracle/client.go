// Package oracle implements the HTTP client for the currency oracle, with a
// circuit breaker around the upstream and a short-lived redis cache in
// front of it.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/j50301m/wallet-server/internal/domain/entities"
	"github.com/j50301m/wallet-server/internal/domain/errors"
	"github.com/j50301m/wallet-server/internal/domain/services/currency"
	"github.com/j50301m/wallet-server/internal/infrastructure/config"
	"github.com/j50301m/wallet-server/pkg/logger"
)

const currencyStatusEnabled = 1

type currencyPayload struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status int32  `json:"status"`
}

type currencyListResponse struct {
	Currencies []currencyPayload `json:"currencies"`
}

// Client talks to the currency oracle. It implements currency.Oracle.
type Client struct {
	baseURL  string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
	redis    *redis.Client
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewClient builds the oracle client. The redis client may be nil, in which
// case caching is disabled.
func NewClient(cfg config.OracleConfig, redisClient *redis.Client, logger *logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        cfg.BreakerName,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		breaker:  gobreaker.NewCircuitBreaker(settings),
		redis:    redisClient,
		cacheTTL: time.Duration(cfg.CacheTTL) * time.Second,
		logger:   logger,
	}
}

// GetClientCurrencies returns the enabled currencies matching names. An
// empty names slice matches all enabled currencies of the client.
func (c *Client) GetClientCurrencies(ctx context.Context, clientID int64, names []string) ([]entities.Currency, error) {
	cacheKey := fmt.Sprintf("oracle:currencies:%d:%s", clientID, strings.Join(names, ","))
	if cached, ok := c.cacheGet(ctx, cacheKey); ok {
		var currencies []entities.Currency
		if err := json.Unmarshal(cached, &currencies); err == nil {
			return currencies, nil
		}
	}

	endpoint := fmt.Sprintf("%s/clients/%d/currencies", c.baseURL, clientID)
	params := url.Values{}
	params.Set("status", fmt.Sprintf("%d", currencyStatusEnabled))
	if len(names) > 0 {
		params.Set("names", strings.Join(names, ","))
	}

	var listResp currencyListResponse
	if err := c.getJSON(ctx, endpoint+"?"+params.Encode(), &listResp); err != nil {
		return nil, err
	}

	currencies := make([]entities.Currency, 0, len(listResp.Currencies))
	for _, p := range listResp.Currencies {
		currencies = append(currencies, entities.Currency{ID: p.ID, Name: p.Name})
	}

	c.cacheSet(ctx, cacheKey, currencies)
	return currencies, nil
}

// GetClientCurrencyByID returns one currency of the client regardless of
// status.
func (c *Client) GetClientCurrencyByID(ctx context.Context, clientID, currencyID int64) (*currency.ClientCurrency, error) {
	cacheKey := fmt.Sprintf("oracle:currency:%d:%d", clientID, currencyID)
	if cached, ok := c.cacheGet(ctx, cacheKey); ok {
		var cc currency.ClientCurrency
		if err := json.Unmarshal(cached, &cc); err == nil {
			return &cc, nil
		}
	}

	endpoint := fmt.Sprintf("%s/clients/%d/currencies/%d", c.baseURL, clientID, currencyID)

	var payload currencyPayload
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	cc := &currency.ClientCurrency{
		ID:      payload.ID,
		Name:    payload.Name,
		Enabled: payload.Status == currencyStatusEnabled,
	}
	c.cacheSet(ctx, cacheKey, cc)
	return cc, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	body, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build oracle request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("oracle request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, errors.NotFoundError("currency")
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("oracle returned status %d", resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		if errors.IsNotFound(err) {
			return err
		}
		return errors.InternalError("currency oracle unavailable", err)
	}

	if err := json.Unmarshal(body.([]byte), dest); err != nil {
		return errors.InternalError("malformed oracle response", err)
	}
	return nil
}

func (c *Client) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return nil, false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *Client) cacheSet(ctx context.Context, key string, value interface{}) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Debug("oracle cache write failed", "key", key, "error", err)
	}
}
