package swap

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"dex_go/internal/domain"
	"dex_go/internal/infra"

	"github.com/shopspring/decimal"
)

type fakeMarketData struct {
	markets []domain.Market
	listErr error
	book    *domain.OrderBookSnapshot
	bookErr error
}

func (f *fakeMarketData) ListMarkets(_ context.Context) ([]domain.Market, error) {
	return f.markets, f.listErr
}

func (f *fakeMarketData) FetchOrderBook(_ context.Context, _ string) (*domain.OrderBookSnapshot, error) {
	return f.book, f.bookErr
}

type fakeWallet struct {
	signErr error
}

func (f *fakeWallet) Address() string { return "inj1test" }

func (f *fakeWallet) SignOrder(_ context.Context, order *domain.PricedOrder) (*domain.SignedOrder, error) {
	if f.signErr != nil {
		return nil, f.signErr
	}
	payload, _ := json.Marshal(order)
	return &domain.SignedOrder{Order: *order, Sender: "inj1test", Payload: payload, Sequence: 1}, nil
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	hash   string
	err    error
	orders []*domain.SignedOrder
}

func (f *fakeBroadcaster) Submit(_ context.Context, order *domain.SignedOrder) (string, error) {
	f.mu.Lock()
	f.orders = append(f.orders, order)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.hash, nil
}

type memJournal struct {
	mu      sync.Mutex
	results []domain.SwapResult
}

func (j *memJournal) RecordSwap(res domain.SwapResult) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = append(j.results, res)
	return nil
}

func injUsdtMarket() domain.Market {
	return domain.Market{
		ID:            "0xabc",
		Ticker:        "INJ/USDT",
		BaseDenom:     "inj",
		QuoteDenom:    "peggy0xusdt",
		BaseDecimals:  18,
		QuoteDecimals: 6,
	}
}

func newTestOrchestrator(md domain.MarketDataService, b domain.Broadcaster, j domain.SwapJournal) *Orchestrator {
	return NewOrchestrator(md, &fakeWallet{}, b, NewSimulator(rand.New(rand.NewSource(1))), Options{
		Journal:      j,
		Metrics:      &infra.Metrics{},
		StageTimeout: time.Second,
	})
}

func TestSwapHappyPath(t *testing.T) {
	md := &fakeMarketData{
		markets: []domain.Market{injUsdtMarket()},
		book:    testBook([]string{"4.9"}, []string{"5.0"}),
	}
	bc := &fakeBroadcaster{hash: "0xFEED"}
	journal := &memJournal{}
	o := newTestOrchestrator(md, bc, journal)

	// Buy INJ by spending 100 USDT with 1% tolerance.
	res, err := o.Swap(context.Background(), Request{
		FromDenom:   "peggy0xusdt",
		ToDenom:     "INJ",
		Amount:      decimal.NewFromInt(100),
		SlippagePct: decimal.NewFromInt(1),
	})
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}

	if res.IsSimulated {
		t.Error("real swap labeled as simulated")
	}
	if res.TxHash != "0xFEED" {
		t.Errorf("tx hash = %q", res.TxHash)
	}
	if res.MarketID != "0xabc" || res.Side != domain.SideBuy {
		t.Errorf("market/side = %s/%s", res.MarketID, res.Side)
	}
	if !decimal.RequireFromString(res.ExecutionPrice).Equal(decimal.RequireFromString("5.05")) {
		t.Errorf("execution price = %s, want 5.05", res.ExecutionPrice)
	}
	if res.FromDenom != "peggy0xusdt" || res.ToDenom != "inj" {
		t.Errorf("denoms = %s -> %s", res.FromDenom, res.ToDenom)
	}

	if len(bc.orders) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(bc.orders))
	}
	order := bc.orders[0].Order
	if order.TimeInForce != domain.TimeInForceIOC {
		t.Errorf("time in force = %s", order.TimeInForce)
	}
	if order.Cid == "" {
		t.Error("order missing client id")
	}

	if len(journal.results) != 1 {
		t.Fatalf("journal entries = %d, want 1", len(journal.results))
	}
}

func TestSwapValidation(t *testing.T) {
	o := newTestOrchestrator(&fakeMarketData{}, &fakeBroadcaster{}, nil)

	tests := []struct {
		name string
		req  Request
	}{
		{"zero amount", Request{FromDenom: "inj", ToDenom: "usdt", Amount: decimal.Zero}},
		{"negative amount", Request{FromDenom: "inj", ToDenom: "usdt", Amount: decimal.NewFromInt(-5)}},
		{"slippage above 100", Request{FromDenom: "inj", ToDenom: "usdt", Amount: decimal.NewFromInt(1), SlippagePct: decimal.NewFromInt(101)}},
		{"negative slippage", Request{FromDenom: "inj", ToDenom: "usdt", Amount: decimal.NewFromInt(1), SlippagePct: decimal.NewFromInt(-1)}},
		{"empty denom", Request{FromDenom: "", ToDenom: "usdt", Amount: decimal.NewFromInt(1)}},
		{"same asset after normalization", Request{FromDenom: "INJ", ToDenom: "inj", Amount: decimal.NewFromInt(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Swap(context.Background(), tt.req)
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("got %v, want *ValidationError", err)
			}
		})
	}
}

// Validation failures must never fall back to simulation.
func TestSwapValidationNeverDegrades(t *testing.T) {
	journal := &memJournal{}
	o := newTestOrchestrator(&fakeMarketData{}, &fakeBroadcaster{}, journal)

	_, err := o.Swap(context.Background(), Request{FromDenom: "inj", ToDenom: "usdt", Amount: decimal.Zero})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(journal.results) != 0 {
		t.Errorf("journal entries = %d, want 0", len(journal.results))
	}
}

func TestSwapDegradesToSimulation(t *testing.T) {
	market := injUsdtMarket()
	book := testBook([]string{"4.9"}, []string{"5.0"})

	tests := []struct {
		name string
		md   *fakeMarketData
		bc   *fakeBroadcaster
	}{
		{
			"market listing fails",
			&fakeMarketData{listErr: &domain.NetworkError{Op: "list_markets", Err: errors.New("boom"), Retriable: true}},
			&fakeBroadcaster{hash: "0xFEED"},
		},
		{
			"no market for pair",
			&fakeMarketData{markets: []domain.Market{{ID: "0x1", BaseDenom: "atom", QuoteDenom: "usdt", BaseDecimals: 6, QuoteDecimals: 6}}},
			&fakeBroadcaster{hash: "0xFEED"},
		},
		{
			"book fetch fails",
			&fakeMarketData{markets: []domain.Market{market}, bookErr: domain.ErrBookUnavailable},
			&fakeBroadcaster{hash: "0xFEED"},
		},
		{
			"book side empty",
			&fakeMarketData{markets: []domain.Market{market}, book: testBook([]string{"4.9"}, nil)},
			&fakeBroadcaster{hash: "0xFEED"},
		},
		{
			"broadcast fails",
			&fakeMarketData{markets: []domain.Market{market}, book: book},
			&fakeBroadcaster{err: domain.ErrBroadcastFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			journal := &memJournal{}
			o := newTestOrchestrator(tt.md, tt.bc, journal)

			res, err := o.Swap(context.Background(), Request{
				FromDenom:   "peggy0xusdt",
				ToDenom:     "inj",
				Amount:      decimal.NewFromInt(100),
				SlippagePct: decimal.NewFromInt(1),
			})
			if err != nil {
				t.Fatalf("degraded swap returned error: %v", err)
			}
			if !res.IsSimulated {
				t.Error("degraded result not labeled as simulated")
			}
			if res.MarketID != domain.MarketIDMock {
				t.Errorf("market id = %q, want %q", res.MarketID, domain.MarketIDMock)
			}
			if len(journal.results) != 1 {
				t.Errorf("journal entries = %d, want 1", len(journal.results))
			}
		})
	}
}

type canceledMarketData struct{}

func (canceledMarketData) ListMarkets(ctx context.Context) ([]domain.Market, error) {
	return nil, ctx.Err()
}

func (canceledMarketData) FetchOrderBook(ctx context.Context, _ string) (*domain.OrderBookSnapshot, error) {
	return nil, ctx.Err()
}

// Caller cancellation is not a stage failure and must not fabricate a
// simulated result.
func TestSwapCancellationPropagates(t *testing.T) {
	journal := &memJournal{}
	o := newTestOrchestrator(canceledMarketData{}, &fakeBroadcaster{hash: "0xFEED"}, journal)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Swap(ctx, Request{
		FromDenom:   "peggy0xusdt",
		ToDenom:     "inj",
		Amount:      decimal.NewFromInt(100),
		SlippagePct: decimal.NewFromInt(1),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if len(journal.results) != 0 {
		t.Errorf("journal entries = %d, want 0", len(journal.results))
	}
}

func TestSwapSellDirection(t *testing.T) {
	md := &fakeMarketData{
		markets: []domain.Market{injUsdtMarket()},
		book:    testBook([]string{"4.9"}, []string{"5.0"}),
	}
	bc := &fakeBroadcaster{hash: "0xFEED"}
	o := newTestOrchestrator(md, bc, nil)

	// Selling INJ for USDT crosses the bid side.
	res, err := o.Swap(context.Background(), Request{
		FromDenom:   "inj",
		ToDenom:     "peggy0xusdt",
		Amount:      decimal.NewFromInt(2),
		SlippagePct: decimal.Zero,
	})
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}

	if res.Side != domain.SideSell {
		t.Errorf("side = %s, want sell", res.Side)
	}
	if !decimal.RequireFromString(res.ExecutionPrice).Equal(decimal.RequireFromString("4.9")) {
		t.Errorf("execution price = %s, want 4.9", res.ExecutionPrice)
	}

	// 2 INJ at 18 decimals.
	qty := decimal.RequireFromString(bc.orders[0].Order.Quantity)
	if !qty.Equal(decimal.New(2, 18)) {
		t.Errorf("quantity = %s, want 2e18", qty)
	}
}

func TestSwapConcurrent(t *testing.T) {
	md := &fakeMarketData{
		markets: []domain.Market{injUsdtMarket()},
		book:    testBook([]string{"4.9"}, []string{"5.0"}),
	}
	bc := &fakeBroadcaster{hash: "0xFEED"}
	journal := &memJournal{}
	o := newTestOrchestrator(md, bc, journal)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := o.Swap(context.Background(), Request{
				FromDenom:   "peggy0xusdt",
				ToDenom:     "inj",
				Amount:      decimal.NewFromInt(10),
				SlippagePct: decimal.NewFromInt(1),
			})
			if err != nil {
				t.Errorf("Swap: %v", err)
				return
			}
			if res.IsSimulated {
				t.Error("concurrent swap degraded unexpectedly")
			}
		}()
	}
	wg.Wait()

	if len(journal.results) != 16 {
		t.Errorf("journal entries = %d, want 16", len(journal.results))
	}
}
