package swap

import (
	"fmt"

	"dex_go/internal/domain"

	"github.com/shopspring/decimal"
)

// OrderUnits is the exchange-native representation of an order: integer-scaled
// quantity in base precision and the execution price at full decimal
// precision. Both are exact decimal strings, never floats.
type OrderUnits struct {
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// ToOrderUnits converts a human-scale amount into exchange-native order units.
//
// BUY: humanAmount is the quote amount to spend.
//
//	quantity = humanAmount * 10^quoteDecimals / price * 10^(baseDecimals-quoteDecimals)
//
// SELL: humanAmount is the base amount to sell.
//
//	quantity = humanAmount * 10^baseDecimals
//
// The price passes through unscaled; display-side conversions rescale by
// 10^(quoteDecimals-baseDecimals) as needed.
func ToOrderUnits(side domain.OrderSide, humanAmount decimal.Decimal, baseDecimals, quoteDecimals int, execPrice decimal.Decimal) (OrderUnits, error) {
	if execPrice.IsZero() || execPrice.IsNegative() {
		return OrderUnits{}, fmt.Errorf("non-positive execution price %s: %w", execPrice, domain.ErrOrderConstruction)
	}

	switch side {
	case domain.SideBuy:
		quoteScaled := humanAmount.Shift(int32(quoteDecimals))
		quantity := quoteScaled.Div(execPrice).Shift(int32(baseDecimals - quoteDecimals))
		return OrderUnits{Quantity: quantity, Price: execPrice}, nil

	case domain.SideSell:
		quantity := humanAmount.Shift(int32(baseDecimals))
		return OrderUnits{Quantity: quantity, Price: execPrice}, nil

	default:
		return OrderUnits{}, fmt.Errorf("unknown order side %q: %w", side, domain.ErrOrderConstruction)
	}
}

// EstimatedOutput converts a priced order back into the human-scale amount the
// caller can expect to receive.
//
// BUY: base asset received = quantity / 10^baseDecimals.
// SELL: quote asset received = quantity * price / 10^baseDecimals
// (quantity is base-scaled; multiplying by the unscaled price yields a
// base-scaled quote value).
func EstimatedOutput(side domain.OrderSide, units OrderUnits, baseDecimals int) decimal.Decimal {
	switch side {
	case domain.SideBuy:
		return units.Quantity.Shift(int32(-baseDecimals))
	case domain.SideSell:
		return units.Quantity.Mul(units.Price).Shift(int32(-baseDecimals))
	default:
		return decimal.Zero
	}
}
