package swap

import (
	"fmt"

	"dex_go/internal/domain"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// ExecutionPrice derives the worst acceptable execution price from a fresh
// order book snapshot. A buyer crosses the ask side and tolerates a price up
// to bestAsk*(1+slippage/100); a seller crosses the bid side and tolerates
// down to bestBid*(1-slippage/100).
//
// All arithmetic is exact decimal. Slippage conversion is rational scaling
// (pct/100), never a float round-trip.
func ExecutionPrice(book *domain.OrderBookSnapshot, side domain.OrderSide, slippagePct decimal.Decimal) (decimal.Decimal, error) {
	if book == nil {
		return decimal.Zero, domain.ErrBookUnavailable
	}

	switch side {
	case domain.SideBuy:
		ask, ok := book.BestAsk()
		if !ok {
			return decimal.Zero, fmt.Errorf("no asks in book %s: %w", book.MarketID, domain.ErrBookUnavailable)
		}
		factor := decimal.NewFromInt(1).Add(slippagePct.Div(oneHundred))
		return ask.Price.Mul(factor), nil

	case domain.SideSell:
		bid, ok := book.BestBid()
		if !ok {
			return decimal.Zero, fmt.Errorf("no bids in book %s: %w", book.MarketID, domain.ErrBookUnavailable)
		}
		factor := decimal.NewFromInt(1).Sub(slippagePct.Div(oneHundred))
		return bid.Price.Mul(factor), nil

	default:
		return decimal.Zero, fmt.Errorf("unknown order side %q: %w", side, domain.ErrOrderConstruction)
	}
}
