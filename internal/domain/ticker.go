package domain

import "github.com/shopspring/decimal"

// Ticker is a live price observation for a market, pushed by the stream
// worker. Observation only: execution pricing always reads a fresh order book
// snapshot, never a ticker.
type Ticker struct {
	MarketID   string          `json:"market_id"`
	Ticker     string          `json:"ticker"` // human pair label, e.g. "INJ/USDT"
	Price      decimal.Decimal `json:"price"`
	BestBid    decimal.Decimal `json:"best_bid"`
	BestAsk    decimal.Decimal `json:"best_ask"`
	UpdatedAtM int64           `json:"updated_at"` // unix milliseconds from the feed
}

// Spread returns ask - bid, or zero when either side is missing.
func (t *Ticker) Spread() decimal.Decimal {
	if t.BestBid.IsZero() || t.BestAsk.IsZero() {
		return decimal.Zero
	}
	return t.BestAsk.Sub(t.BestBid)
}

// MidPrice returns (bid+ask)/2, falling back to the last trade price when a
// side is missing.
func (t *Ticker) MidPrice() decimal.Decimal {
	if t.BestBid.IsZero() || t.BestAsk.IsZero() {
		return t.Price
	}
	return t.BestBid.Add(t.BestAsk).Div(decimal.NewFromInt(2))
}
