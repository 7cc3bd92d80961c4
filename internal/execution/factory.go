package execution

import (
	"fmt"
	"log/slog"
	"os"

	"dex_go/internal/domain"
	"dex_go/internal/infra"
	"dex_go/internal/infra/dex"
)

// Mode represents the trading execution mode
type Mode string

const (
	ModeSim  Mode = "SIM"
	ModeReal Mode = "REAL"
)

// Factory creates the broadcast/signing collaborators for the configured mode
type Factory struct {
	config *infra.Config
	client *dex.Client
}

// NewFactory creates a new factory
func NewFactory(cfg *infra.Config, client *dex.Client) *Factory {
	return &Factory{config: cfg, client: client}
}

// CreateBroadcaster returns the Broadcaster for the configured mode.
//
// SIM mode returns a broadcaster that refuses every submission, which routes
// all swaps through the orchestrator's simulated path. REAL mode requires an
// explicit safety latch before it will touch mainnet funds.
func (f *Factory) CreateBroadcaster() (domain.Broadcaster, error) {
	mode := Mode(f.config.Trading.Mode)

	slog.Info("Initializing Execution System", "mode", mode)

	switch mode {
	case ModeSim:
		return &DisabledBroadcaster{}, nil

	case ModeReal:
		// Real Trading: SAFETY LATCH CHECK
		if os.Getenv("CONFIRM_REAL_MONEY") != "true" {
			err := fmt.Errorf("SAFETY_GUARD: Real trading requires 'CONFIRM_REAL_MONEY=true' environment variable")
			slog.Error(err.Error())
			return nil, err
		}

		slog.Info("🚨🚨🚨 REAL broadcast enabled (mainnet) 🚨🚨🚨")
		return NewChainBroadcaster(f.client), nil

	default:
		return nil, fmt.Errorf("unknown execution mode: %s", mode)
	}
}

// CreateWallet returns the WalletProvider for the configured mode. SIM mode
// needs no signer; the disabled broadcaster rejects before signing matters,
// so a local no-op identity suffices.
func (f *Factory) CreateWallet() (domain.WalletProvider, error) {
	if Mode(f.config.Trading.Mode) == ModeSim {
		return NewLocalWallet(f.config.Wallet.Address), nil
	}

	if f.config.Wallet.SignerURL == "" {
		return nil, fmt.Errorf("wallet.signer_url is required in REAL mode")
	}
	return NewRemoteSigner(f.config), nil
}
