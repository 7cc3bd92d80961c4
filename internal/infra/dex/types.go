package dex

import (
	"encoding/json"
	"fmt"
	"time"

	"dex_go/internal/domain"

	"github.com/shopspring/decimal"
)

// The indexer has shipped two wire schemas for the same data. Rather than
// probing field names ad hoc at every call site, this file is the single
// adapter layer: each payload decodes into the canonical domain shape and
// the rest of the codebase stays schema-agnostic.

// Schema identifies a known indexer wire format.
type Schema string

const (
	SchemaAuto Schema = ""   // try v2 first, fall back to v1
	SchemaV1   Schema = "v1" // legacy camelCase envelope
	SchemaV2   Schema = "v2" // current snake_case envelope
)

// ---- markets ----

// marketsEnvelopeV1 is the legacy listing: camelCase fields, decimals nested
// in token metadata objects.
type marketsEnvelopeV1 struct {
	Markets []struct {
		MarketID      string `json:"marketId"`
		Ticker        string `json:"ticker"`
		BaseDenom     string `json:"baseDenom"`
		QuoteDenom    string `json:"quoteDenom"`
		BaseTokenMeta *struct {
			Decimals int `json:"decimals"`
		} `json:"baseTokenMeta"`
		QuoteTokenMeta *struct {
			Decimals int `json:"decimals"`
		} `json:"quoteTokenMeta"`
	} `json:"markets"`
}

// marketsEnvelopeV2 is the current listing: snake_case, flat decimals.
type marketsEnvelopeV2 struct {
	Data []struct {
		MarketID      string `json:"market_id"`
		Ticker        string `json:"ticker"`
		BaseDenom     string `json:"base_denom"`
		QuoteDenom    string `json:"quote_denom"`
		BaseDecimals  int    `json:"base_decimals"`
		QuoteDecimals int    `json:"quote_decimals"`
	} `json:"data"`
}

// decodeMarkets maps a raw listing payload onto canonical markets.
// Missing decimals fall back to domain.DefaultDecimals, never to zero.
func decodeMarkets(raw []byte, schema Schema) ([]domain.Market, error) {
	if schema == SchemaAuto || schema == SchemaV2 {
		var v2 marketsEnvelopeV2
		if err := json.Unmarshal(raw, &v2); err == nil && len(v2.Data) > 0 {
			markets := make([]domain.Market, 0, len(v2.Data))
			for _, m := range v2.Data {
				markets = append(markets, domain.Market{
					ID:            m.MarketID,
					Ticker:        m.Ticker,
					BaseDenom:     domain.NormalizeDenom(m.BaseDenom),
					QuoteDenom:    domain.NormalizeDenom(m.QuoteDenom),
					BaseDecimals:  decimalsOrDefault(m.BaseDecimals),
					QuoteDecimals: decimalsOrDefault(m.QuoteDecimals),
				})
			}
			return markets, nil
		}
		if schema == SchemaV2 {
			return nil, fmt.Errorf("markets payload does not match schema v2")
		}
	}

	var v1 marketsEnvelopeV1
	if err := json.Unmarshal(raw, &v1); err != nil {
		return nil, fmt.Errorf("markets payload matches no known schema: %w", err)
	}
	markets := make([]domain.Market, 0, len(v1.Markets))
	for _, m := range v1.Markets {
		base := 0
		if m.BaseTokenMeta != nil {
			base = m.BaseTokenMeta.Decimals
		}
		quote := 0
		if m.QuoteTokenMeta != nil {
			quote = m.QuoteTokenMeta.Decimals
		}
		markets = append(markets, domain.Market{
			ID:            m.MarketID,
			Ticker:        m.Ticker,
			BaseDenom:     domain.NormalizeDenom(m.BaseDenom),
			QuoteDenom:    domain.NormalizeDenom(m.QuoteDenom),
			BaseDecimals:  decimalsOrDefault(base),
			QuoteDecimals: decimalsOrDefault(quote),
		})
	}
	return markets, nil
}

func decimalsOrDefault(d int) int {
	if d <= 0 {
		return domain.DefaultDecimals
	}
	return d
}

// ---- order books ----

// bookEnvelopeV1 is the legacy book: buys/sells as objects.
type bookEnvelopeV1 struct {
	Orderbook *struct {
		Buys []struct {
			Price    string `json:"price"`
			Quantity string `json:"quantity"`
		} `json:"buys"`
		Sells []struct {
			Price    string `json:"price"`
			Quantity string `json:"quantity"`
		} `json:"sells"`
	} `json:"orderbook"`
}

// bookEnvelopeV2 is the current book: bids/asks as [price, quantity] pairs.
type bookEnvelopeV2 struct {
	Data *struct {
		Bids [][]string `json:"bids"`
		Asks [][]string `json:"asks"`
	} `json:"data"`
}

// decodeOrderBook maps a raw book payload onto the canonical snapshot.
// Bids stay descending and asks ascending as delivered by the exchange.
func decodeOrderBook(raw []byte, marketID string, schema Schema) (*domain.OrderBookSnapshot, error) {
	snapshot := &domain.OrderBookSnapshot{
		MarketID:  marketID,
		FetchedAt: time.Now(),
	}

	if schema == SchemaAuto || schema == SchemaV2 {
		var v2 bookEnvelopeV2
		if err := json.Unmarshal(raw, &v2); err == nil && v2.Data != nil {
			for _, pair := range v2.Data.Bids {
				level, err := levelFromPair(pair)
				if err != nil {
					return nil, err
				}
				snapshot.Bids = append(snapshot.Bids, level)
			}
			for _, pair := range v2.Data.Asks {
				level, err := levelFromPair(pair)
				if err != nil {
					return nil, err
				}
				snapshot.Asks = append(snapshot.Asks, level)
			}
			return snapshot, nil
		}
		if schema == SchemaV2 {
			return nil, fmt.Errorf("orderbook payload does not match schema v2")
		}
	}

	var v1 bookEnvelopeV1
	if err := json.Unmarshal(raw, &v1); err != nil || v1.Orderbook == nil {
		return nil, fmt.Errorf("orderbook payload matches no known schema")
	}
	for _, l := range v1.Orderbook.Buys {
		level, err := levelFromStrings(l.Price, l.Quantity)
		if err != nil {
			return nil, err
		}
		snapshot.Bids = append(snapshot.Bids, level)
	}
	for _, l := range v1.Orderbook.Sells {
		level, err := levelFromStrings(l.Price, l.Quantity)
		if err != nil {
			return nil, err
		}
		snapshot.Asks = append(snapshot.Asks, level)
	}
	return snapshot, nil
}

func levelFromPair(pair []string) (domain.PriceLevel, error) {
	if len(pair) < 2 {
		return domain.PriceLevel{}, fmt.Errorf("malformed book level: %v", pair)
	}
	return levelFromStrings(pair[0], pair[1])
}

func levelFromStrings(price, quantity string) (domain.PriceLevel, error) {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return domain.PriceLevel{}, fmt.Errorf("malformed book price %q: %w", price, err)
	}
	q, err := decimal.NewFromString(quantity)
	if err != nil {
		return domain.PriceLevel{}, fmt.Errorf("malformed book quantity %q: %w", quantity, err)
	}
	return domain.PriceLevel{Price: p, Quantity: q}, nil
}

// ---- broadcast ----

type broadcastRequest struct {
	Order  domain.PricedOrder `json:"order"`
	Sender string             `json:"sender"`
	Sig    []byte             `json:"sig"`
	Seq    uint64             `json:"seq"`
}

type broadcastResponse struct {
	TxHash string `json:"tx_hash"`
	Code   int    `json:"code"`
	RawLog string `json:"raw_log"`
}

// ---- stream ----

type streamSubscribeRequest struct {
	Op      string   `json:"op"`
	Markets []string `json:"markets"`
}

type streamTickerMessage struct {
	Type     string `json:"type"`
	MarketID string `json:"market_id"`
	Ticker   string `json:"ticker"`
	Price    string `json:"price"`
	BestBid  string `json:"best_bid"`
	BestAsk  string `json:"best_ask"`
	Ts       int64  `json:"ts"`
}
