package domain

import "github.com/shopspring/decimal"

// Time-in-force values understood by the exchange.
const (
	TimeInForceIOC = "IOC" // immediate-or-cancel; the only TIF used for swaps
)

// TradeIntent is a fully-resolved swap request: the market to trade on, the
// direction, and the caller's human-scale amount and slippage tolerance.
// It lives for exactly one orchestration run and is never persisted.
type TradeIntent struct {
	Market      *Market
	Side        OrderSide
	HumanAmount decimal.Decimal // quote amount for BUY, base amount for SELL
	SlippagePct decimal.Decimal // [0, 100]
}

// PricedOrder is the exchange-native order derived from a TradeIntent and an
// order book snapshot. Price and Quantity are exact decimal strings already
// scaled to the market's quote and base precision. Immutable once built.
type PricedOrder struct {
	MarketID    string    `json:"market_id"`
	Side        OrderSide `json:"side"`
	Price       string    `json:"price"`
	Quantity    string    `json:"quantity"`
	TimeInForce string    `json:"time_in_force"`
	Cid         string    `json:"cid"` // client order id, for idempotent resubmission
}

// SignedOrder is a PricedOrder authorized by the wallet collaborator,
// ready for broadcast. The signature payload is opaque to this core.
type SignedOrder struct {
	Order    PricedOrder
	Sender   string
	Payload  []byte
	Sequence uint64
}
