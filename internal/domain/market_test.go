package domain

import (
	"errors"
	"testing"
)

func listing() []Market {
	return []Market{
		{ID: "0xaaa", Ticker: "INJ/USDT", BaseDenom: "inj", QuoteDenom: "peggy0xusdt", BaseDecimals: 18, QuoteDecimals: 6},
		{ID: "0xbbb", Ticker: "ATOM/USDT", BaseDenom: "ibc/atom", QuoteDenom: "peggy0xusdt", BaseDecimals: 6, QuoteDecimals: 6},
		// Overlapping duplicate of the first pair; must never be picked.
		{ID: "0xccc", Ticker: "INJ/USDT v2", BaseDenom: "inj", QuoteDenom: "peggy0xusdt", BaseDecimals: 18, QuoteDecimals: 6},
	}
}

func TestFindMarket(t *testing.T) {
	t.Run("buy direction when destination is base", func(t *testing.T) {
		m, side, err := FindMarket(listing(), "peggy0xusdt", "inj")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.ID != "0xaaa" {
			t.Errorf("market = %s, want 0xaaa", m.ID)
		}
		if side != SideBuy {
			t.Errorf("side = %s, want BUY", side)
		}
	})

	t.Run("sell direction when source is base", func(t *testing.T) {
		m, side, err := FindMarket(listing(), "inj", "peggy0xusdt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.ID != "0xaaa" {
			t.Errorf("market = %s, want 0xaaa", m.ID)
		}
		if side != SideSell {
			t.Errorf("side = %s, want SELL", side)
		}
	})

	t.Run("first match wins over duplicates", func(t *testing.T) {
		m, _, err := FindMarket(listing(), "INJ", "peggy0xusdt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.ID != "0xaaa" {
			t.Errorf("duplicate listing broke first-wins tie-break: got %s", m.ID)
		}
	})

	t.Run("denoms are normalized before matching", func(t *testing.T) {
		_, side, err := FindMarket(listing(), "peggy0xusdt", "INJ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if side != SideBuy {
			t.Errorf("side = %s, want BUY", side)
		}
	})

	t.Run("no match", func(t *testing.T) {
		_, _, err := FindMarket(listing(), "inj", "ibc/unknown")
		if !errors.Is(err, ErrMarketNotFound) {
			t.Errorf("err = %v, want ErrMarketNotFound", err)
		}
	})

	t.Run("empty listing", func(t *testing.T) {
		_, _, err := FindMarket(nil, "inj", "peggy0xusdt")
		if !errors.Is(err, ErrMarketNotFound) {
			t.Errorf("err = %v, want ErrMarketNotFound", err)
		}
	})
}
