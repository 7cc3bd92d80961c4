package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceLevel is a single resting level of the order book.
type PriceLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// OrderBookSnapshot is the book state at the instant it was fetched.
// Bids are sorted descending by price, asks ascending. Snapshots are never
// cached across swap requests; a stale book prices a stale trade.
type OrderBookSnapshot struct {
	MarketID  string       `json:"market_id"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// BestBid returns the highest bid, or false when the bid side is empty.
func (b *OrderBookSnapshot) BestBid() (PriceLevel, bool) {
	if len(b.Bids) == 0 {
		return PriceLevel{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns the lowest ask, or false when the ask side is empty.
func (b *OrderBookSnapshot) BestAsk() (PriceLevel, bool) {
	if len(b.Asks) == 0 {
		return PriceLevel{}, false
	}
	return b.Asks[0], true
}
