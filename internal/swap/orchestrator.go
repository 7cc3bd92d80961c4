package swap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dex_go/internal/domain"
	"dex_go/internal/infra"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stage names for logging and failure attribution. The orchestrator walks
// them strictly in order; any degradable failure between stageMarket and
// stageSubmit escapes to the simulated path.
const (
	stageNormalize = "normalize"
	stageMarket    = "resolve_market"
	stageBook      = "fetch_book"
	stagePrice     = "price"
	stageSubmit    = "submit"
)

// Request is one swap ask as it arrives from the caller.
type Request struct {
	FromDenom   string
	ToDenom     string
	Amount      decimal.Decimal
	SlippagePct decimal.Decimal
}

// Orchestrator sequences the swap pipeline: normalize -> resolve market ->
// fetch book -> price -> convert units -> sign -> broadcast. Every remote
// stage runs under its own timeout, and any failure before a tx hash is
// obtained degrades to the simulator. Once a hash exists the result is real
// and is never re-labeled.
//
// Orchestrator holds no per-request state; concurrent Swap calls are
// independent.
type Orchestrator struct {
	marketData   domain.MarketDataService
	wallet       domain.WalletProvider
	broadcaster  domain.Broadcaster
	journal      domain.SwapJournal // optional
	sim          *Simulator
	metrics      *infra.Metrics
	stageTimeout time.Duration
	logger       *slog.Logger
}

// Options tunes orchestrator construction.
type Options struct {
	Journal      domain.SwapJournal
	Metrics      *infra.Metrics
	StageTimeout time.Duration
}

// NewOrchestrator wires the swap pipeline. marketData, wallet, broadcaster and
// sim are mandatory collaborators; opts may be zero.
func NewOrchestrator(marketData domain.MarketDataService, wallet domain.WalletProvider, broadcaster domain.Broadcaster, sim *Simulator, opts Options) *Orchestrator {
	timeout := opts.StageTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = infra.GlobalMetrics
	}
	return &Orchestrator{
		marketData:   marketData,
		wallet:       wallet,
		broadcaster:  broadcaster,
		journal:      opts.Journal,
		sim:          sim,
		metrics:      metrics,
		stageTimeout: timeout,
		logger:       slog.Default().With("module", "swap"),
	}
}

// Swap executes one token swap. Validation failures return a
// *domain.ValidationError and nothing else runs. Degradable failures in the
// remote stages never escape: the result degrades to a labeled simulation
// instead. Caller cancellation is not degradable and propagates as an error.
func (o *Orchestrator) Swap(ctx context.Context, req Request) (domain.SwapResult, error) {
	if err := validate(req); err != nil {
		return domain.SwapResult{}, err
	}

	// Stage 1: normalization cannot fail.
	from := domain.NormalizeDenom(req.FromDenom)
	to := domain.NormalizeDenom(req.ToDenom)

	// Stage 2: resolve the market against a fresh listing.
	market, side, err := o.resolveMarket(ctx, from, to)
	if err != nil {
		return o.degrade(stageMarket, req, err)
	}
	intent := domain.TradeIntent{
		Market:      market,
		Side:        side,
		HumanAmount: req.Amount,
		SlippagePct: req.SlippagePct,
	}

	// Stage 3: fetch the live order book.
	book, err := o.fetchBook(ctx, market.ID)
	if err != nil {
		return o.degrade(stageBook, req, err)
	}

	// Stage 4: slippage-adjusted execution price.
	price, err := ExecutionPrice(book, intent.Side, intent.SlippagePct)
	if err != nil {
		return o.degrade(stagePrice, req, err)
	}

	// Stage 5: unit conversion, signing, broadcast.
	units, err := ToOrderUnits(intent.Side, intent.HumanAmount, market.BaseDecimals, market.QuoteDecimals, price)
	if err != nil {
		return o.degrade(stageSubmit, req, err)
	}

	order := &domain.PricedOrder{
		MarketID:    market.ID,
		Side:        intent.Side,
		Price:       units.Price.String(),
		Quantity:    units.Quantity.String(),
		TimeInForce: domain.TimeInForceIOC,
		Cid:         uuid.NewString(),
	}

	txHash, err := o.submit(ctx, order)
	if err != nil {
		return o.degrade(stageSubmit, req, err)
	}

	// Stage 6: a tx hash exists, the result is real from here on.
	result := domain.SwapResult{
		FromDenom:       from,
		ToDenom:         to,
		InputAmount:     req.Amount.String(),
		EstimatedOutput: EstimatedOutput(side, units, market.BaseDecimals).String(),
		ExecutionPrice:  units.Price.String(),
		TxHash:          txHash,
		MarketID:        market.ID,
		Side:            side,
		IsSimulated:     false,
	}

	o.metrics.RecordSwapExecuted()
	o.record(result)
	o.logger.Info("Swap executed",
		slog.String("market", market.ID),
		slog.String("side", string(side)),
		slog.String("tx", txHash))
	return result, nil
}

func validate(req Request) error {
	if !req.Amount.IsPositive() {
		return domain.NewValidationError("amount", "must be positive")
	}
	if req.SlippagePct.IsNegative() || req.SlippagePct.GreaterThan(oneHundred) {
		return domain.NewValidationError("slippage", "must be within [0, 100]")
	}
	if req.FromDenom == "" || req.ToDenom == "" {
		return domain.NewValidationError("denom", "must not be empty")
	}
	if domain.NormalizeDenom(req.FromDenom) == domain.NormalizeDenom(req.ToDenom) {
		return domain.NewValidationError("denom", "source and destination are the same asset")
	}
	return nil
}

func (o *Orchestrator) resolveMarket(ctx context.Context, from, to string) (*domain.Market, domain.OrderSide, error) {
	ctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	start := time.Now()
	markets, err := o.marketData.ListMarkets(ctx)
	o.metrics.RecordRemoteCall(time.Since(start).Nanoseconds())
	if err != nil {
		return nil, "", err
	}
	return domain.FindMarket(markets, from, to)
}

func (o *Orchestrator) fetchBook(ctx context.Context, marketID string) (*domain.OrderBookSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	start := time.Now()
	book, err := o.marketData.FetchOrderBook(ctx, marketID)
	o.metrics.RecordRemoteCall(time.Since(start).Nanoseconds())
	return book, err
}

func (o *Orchestrator) submit(ctx context.Context, order *domain.PricedOrder) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	// Signers return typed errors; wrapping must not mask their degradability.
	signed, err := o.wallet.SignOrder(ctx, order)
	if err != nil {
		return "", fmt.Errorf("sign order: %w", err)
	}

	start := time.Now()
	txHash, err := o.broadcaster.Submit(ctx, signed)
	o.metrics.RecordRemoteCall(time.Since(start).Nanoseconds())
	if err != nil {
		o.metrics.RecordBroadcastError()
		return "", err
	}
	return txHash, nil
}

// degrade is the escape transition: produce a labeled synthetic result and
// swallow the stage error. Only degradable failures (typed domain errors and
// retriable transport errors) take the escape; anything else, such as caller
// cancellation, propagates untouched.
func (o *Orchestrator) degrade(stage string, req Request, cause error) (domain.SwapResult, error) {
	if !domain.IsDegradable(cause) {
		return domain.SwapResult{}, cause
	}

	o.logger.Warn("Swap degraded to simulation",
		slog.String("stage", stage),
		slog.String("from", req.FromDenom),
		slog.String("to", req.ToDenom),
		slog.Any("cause", cause))

	o.metrics.RecordSwapSimulated()
	result := o.sim.Simulate(req.FromDenom, req.ToDenom, req.Amount, req.SlippagePct)
	o.record(result)
	return result, nil
}

func (o *Orchestrator) record(result domain.SwapResult) {
	if o.journal == nil {
		return
	}
	if err := o.journal.RecordSwap(result); err != nil {
		// Journaling is best-effort; the swap outcome stands either way.
		o.logger.Error("Failed to journal swap", slog.Any("error", err))
	}
}
