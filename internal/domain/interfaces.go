package domain

import (
	"context"
)

// MarketDataService is the read boundary to the exchange. Implementations
// surface failures as typed errors (ErrMarketNotFound, ErrBookUnavailable,
// NetworkError), never as raw transport errors the core must parse.
type MarketDataService interface {
	ListMarkets(ctx context.Context) ([]Market, error)
	FetchOrderBook(ctx context.Context, marketID string) (*OrderBookSnapshot, error)
}

// WalletProvider supplies the trading identity. Key creation and storage live
// outside this module entirely.
type WalletProvider interface {
	Address() string
	SignOrder(ctx context.Context, order *PricedOrder) (*SignedOrder, error)
}

// Broadcaster submits a signed order and returns the transaction hash.
// Transport-level retries are its concern, not the core's. Callers that share
// one signing account across concurrent swaps must serialize submissions
// themselves; this core does not lock the account sequence.
type Broadcaster interface {
	Submit(ctx context.Context, order *SignedOrder) (txHash string, err error)
}

// SwapJournal persists terminal swap results for later inspection.
type SwapJournal interface {
	RecordSwap(res SwapResult) error
}

// PriceSink receives live ticker updates from stream workers.
type PriceSink interface {
	UpdateTicker(t Ticker)
}
