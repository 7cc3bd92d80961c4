package domain

// OrderSide is the direction of a trade relative to the market's base asset.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// Market is a tradable base/quote pair as listed by the exchange.
// Decimals come from the upstream asset records and may legitimately differ
// between base and quote.
type Market struct {
	ID            string `json:"market_id"`
	Ticker        string `json:"ticker"`
	BaseDenom     string `json:"base_denom"`
	QuoteDenom    string `json:"quote_denom"`
	BaseDecimals  int    `json:"base_decimals"`
	QuoteDecimals int    `json:"quote_decimals"`
}

// HasPair reports whether the market trades the given unordered denom pair.
// Both inputs must already be normalized.
func (m *Market) HasPair(a, b string) bool {
	return (m.BaseDenom == a && m.QuoteDenom == b) ||
		(m.BaseDenom == b && m.QuoteDenom == a)
}

// FindMarket scans markets in upstream listing order and returns the first one
// pairing fromDenom and toDenom, plus the trade direction: when the
// destination is the market's base asset the swap is a BUY of base with quote,
// otherwise a SELL of base for quote.
//
// First match wins. The upstream listing can contain overlapping markets for
// the same pair; we deliberately do not rank them by liquidity.
func FindMarket(markets []Market, fromDenom, toDenom string) (*Market, OrderSide, error) {
	from := NormalizeDenom(fromDenom)
	to := NormalizeDenom(toDenom)

	for i := range markets {
		m := &markets[i]
		if !m.HasPair(from, to) {
			continue
		}
		if m.BaseDenom == to {
			return m, SideBuy, nil
		}
		return m, SideSell, nil
	}
	return nil, "", ErrMarketNotFound
}
