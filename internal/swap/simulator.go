package swap

import (
	"fmt"
	"math/rand"
	"sync"

	"dex_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Simulator produces clearly-labeled synthetic swap results without any
// network interaction. It is substituted whenever discovery, pricing, or
// submission cannot complete. The randomness source is injected so tests can
// pin a seed and assert exact output.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a simulator around the given randomness source.
func NewSimulator(rng *rand.Rand) *Simulator {
	return &Simulator{rng: rng}
}

// Simulate fabricates a per-unit price in [0.5, 1.5) and applies the caller's
// slippage tolerance as a haircut, so a simulated quote is never more
// optimistic than a real one at the same tolerance. The pseudo tx hash carries
// a SIM- prefix and is visibly distinct from any on-chain hash.
func (s *Simulator) Simulate(fromDenom, toDenom string, amount, slippagePct decimal.Decimal) domain.SwapResult {
	s.mu.Lock()
	// Price drawn at micro resolution to keep the decimal exact.
	priceMicros := 500_000 + s.rng.Int63n(1_000_000)
	hash := s.rng.Uint64()
	s.mu.Unlock()

	price := decimal.New(priceMicros, -6)
	haircut := decimal.NewFromInt(1).Sub(slippagePct.Div(oneHundred))
	estimated := amount.Mul(price).Mul(haircut)

	return domain.SwapResult{
		FromDenom:       domain.NormalizeDenom(fromDenom),
		ToDenom:         domain.NormalizeDenom(toDenom),
		InputAmount:     amount.String(),
		EstimatedOutput: estimated.String(),
		ExecutionPrice:  price.String(),
		TxHash:          fmt.Sprintf("SIM-%016X", hash),
		MarketID:        domain.MarketIDMock,
		// No market was resolved, so direction is nominal: a simulated swap
		// is reported as a BUY of the destination asset.
		Side:        domain.SideBuy,
		IsSimulated: true,
	}
}
