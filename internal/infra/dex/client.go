package dex

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"dex_go/internal/domain"
	"dex_go/internal/infra"

	"github.com/go-resty/resty/v2"
)

// REST endpoints exposed by the indexer.
const (
	endpointMarkets   = "/api/exchange/spot/v1/markets"
	endpointOrderbook = "/api/exchange/spot/v1/orderbook/%s"
	endpointBroadcast = "/api/exchange/spot/v1/orders"
)

// Client is the DEX indexer REST client (Boundary Layer). It implements
// domain.MarketDataService and the submit half of domain.Broadcaster, decoding
// either wire schema into canonical domain shapes. All failures surface as
// typed domain errors.
type Client struct {
	rest    *resty.Client
	schema  Schema
	breaker *infra.CircuitBreaker
	logger  *slog.Logger
}

// NewClient creates a new indexer client from configuration.
func NewClient(cfg *infra.Config) *Client {
	timeout := time.Duration(cfg.Exchange.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := cfg.Exchange.RetryCount
	if retries < 0 {
		retries = 0
	}

	rest := resty.New().
		SetBaseURL(cfg.Exchange.RestURL).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "dexgo/"+cfg.App.Version).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			// Honor Retry-After on 429 rate limiting.
			if resp.StatusCode() == http.StatusTooManyRequests {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if d, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return d, nil
					}
				}
				return 10 * time.Second, nil
			}
			return 0, nil
		})

	return &Client{
		rest:    rest,
		schema:  Schema(cfg.Exchange.SchemaHint),
		breaker: infra.NewCircuitBreaker(infra.DefaultCircuitBreakerConfig("dex_rest")),
		logger:  slog.Default().With("module", "dex_client"),
	}
}

// ListMarkets fetches the current spot market listing in upstream order.
func (c *Client) ListMarkets(ctx context.Context) ([]domain.Market, error) {
	raw, err := c.get(ctx, endpointMarkets, "list_markets")
	if err != nil {
		return nil, err
	}

	markets, err := decodeMarkets(raw, c.schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMarketNotFound, err)
	}
	return markets, nil
}

// FetchOrderBook fetches a fresh book snapshot for one market.
func (c *Client) FetchOrderBook(ctx context.Context, marketID string) (*domain.OrderBookSnapshot, error) {
	raw, err := c.get(ctx, fmt.Sprintf(endpointOrderbook, marketID), "orderbook")
	if err != nil {
		return nil, err
	}

	book, err := decodeOrderBook(raw, marketID, c.schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBookUnavailable, err)
	}
	return book, nil
}

// Broadcast submits a signed order and returns the transaction hash.
func (c *Client) Broadcast(ctx context.Context, signed *domain.SignedOrder) (string, error) {
	if !c.breaker.Allow() {
		return "", fmt.Errorf("%w: circuit open", domain.ErrBroadcastFailed)
	}

	var out broadcastResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(broadcastRequest{
			Order:  signed.Order,
			Sender: signed.Sender,
			Sig:    signed.Payload,
			Seq:    signed.Sequence,
		}).
		SetResult(&out).
		Post(endpointBroadcast)
	if err != nil {
		c.breaker.RecordFailure()
		return "", &domain.NetworkError{Op: "broadcast", Err: err, Retriable: true}
	}
	if resp.IsError() {
		c.breaker.RecordFailure()
		return "", fmt.Errorf("%w: status=%d body=%s", domain.ErrBroadcastFailed, resp.StatusCode(), resp.String())
	}
	if out.Code != 0 || out.TxHash == "" {
		c.breaker.RecordFailure()
		return "", fmt.Errorf("%w: code=%d log=%s", domain.ErrBroadcastFailed, out.Code, out.RawLog)
	}

	c.breaker.RecordSuccess()
	c.logger.Info("Order broadcast", "tx", out.TxHash, "market", signed.Order.MarketID)
	return out.TxHash, nil
}

// get runs one circuit-guarded GET and returns the raw body for the schema
// adapter to decode.
func (c *Client) get(ctx context.Context, endpoint, op string) ([]byte, error) {
	if !c.breaker.Allow() {
		return nil, &domain.NetworkError{Op: op, Err: fmt.Errorf("circuit open"), Retriable: true}
	}

	resp, err := c.rest.R().SetContext(ctx).Get(endpoint)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, &domain.NetworkError{Op: op, Err: err, Retriable: true}
	}
	if resp.IsError() {
		c.breaker.RecordFailure()
		return nil, &domain.NetworkError{
			Op:        op,
			Err:       fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()),
			Retriable: resp.StatusCode() >= http.StatusInternalServerError,
		}
	}

	c.breaker.RecordSuccess()
	return resp.Body(), nil
}
