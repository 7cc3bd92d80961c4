package execution

import (
	"context"
	"fmt"
	"log/slog"

	"dex_go/internal/domain"
	"dex_go/internal/infra/dex"
)

// ChainBroadcaster submits signed orders to the chain through the REST client
type ChainBroadcaster struct {
	client *dex.Client
}

// NewChainBroadcaster creates a broadcaster backed by the exchange client
func NewChainBroadcaster(client *dex.Client) *ChainBroadcaster {
	return &ChainBroadcaster{client: client}
}

// Submit broadcasts the order and returns the transaction hash
func (b *ChainBroadcaster) Submit(ctx context.Context, order *domain.SignedOrder) (string, error) {
	return b.client.Broadcast(ctx, order)
}

// DisabledBroadcaster rejects every submission. Used in SIM mode so the
// discovery and pricing stages run against live data while final execution
// always falls back to the simulated path.
type DisabledBroadcaster struct{}

// Submit always fails with a non-retriable broadcast error
func (b *DisabledBroadcaster) Submit(_ context.Context, order *domain.SignedOrder) (string, error) {
	slog.Debug("Broadcast disabled in SIM mode", "market", order.Order.MarketID)
	return "", fmt.Errorf("broadcast disabled in SIM mode: %w", domain.ErrBroadcastFailed)
}
