package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"dex_go/internal/domain"
	"dex_go/internal/infra"

	"github.com/go-resty/resty/v2"
)

// RemoteSigner delegates order signing to an external signing service. Private
// keys never enter this process; the service holds the account and returns the
// signature payload plus the account sequence it consumed.
type RemoteSigner struct {
	rest    *resty.Client
	address string
}

type signRequest struct {
	Order   *domain.PricedOrder `json:"order"`
	Address string              `json:"address"`
}

type signResponse struct {
	Payload  []byte `json:"payload"`
	Sequence uint64 `json:"sequence"`
}

// NewRemoteSigner creates a signer client from configuration
func NewRemoteSigner(cfg *infra.Config) *RemoteSigner {
	rest := resty.New().
		SetBaseURL(cfg.Wallet.SignerURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	if cfg.Wallet.AuthToken != "" {
		rest.SetAuthToken(cfg.Wallet.AuthToken)
	}

	return &RemoteSigner{rest: rest, address: cfg.Wallet.Address}
}

// Address returns the trading account address
func (s *RemoteSigner) Address() string {
	return s.address
}

// SignOrder asks the signing service to sign the order for this account
func (s *RemoteSigner) SignOrder(ctx context.Context, order *domain.PricedOrder) (*domain.SignedOrder, error) {
	var out signResponse
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(signRequest{Order: order, Address: s.address}).
		SetResult(&out).
		Post("/v1/sign")
	if err != nil {
		return nil, &domain.NetworkError{Op: "sign_order", Err: err, Retriable: true}
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: signer status %d: %s",
			domain.ErrOrderConstruction, resp.StatusCode(), resp.String())
	}
	if len(out.Payload) == 0 {
		return nil, fmt.Errorf("%w: signer returned empty payload", domain.ErrOrderConstruction)
	}

	return &domain.SignedOrder{
		Order:    *order,
		Sender:   s.address,
		Payload:  out.Payload,
		Sequence: out.Sequence,
	}, nil
}

// LocalWallet is the SIM-mode identity. It "signs" orders with a marshaled
// copy of the order itself so the pipeline shape stays identical to real
// trading even though nothing downstream will accept the submission.
// One instance is shared across concurrent swaps, so the sequence is atomic.
type LocalWallet struct {
	address  string
	sequence atomic.Uint64
}

// NewLocalWallet creates a wallet with the given (possibly empty) address
func NewLocalWallet(address string) *LocalWallet {
	if address == "" {
		address = "inj1simulated0000000000000000000000000000"
	}
	return &LocalWallet{address: address}
}

// Address returns the configured or placeholder address
func (w *LocalWallet) Address() string {
	return w.address
}

// SignOrder produces a structurally valid SignedOrder without cryptography
func (w *LocalWallet) SignOrder(_ context.Context, order *domain.PricedOrder) (*domain.SignedOrder, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOrderConstruction, err)
	}

	return &domain.SignedOrder{
		Order:    *order,
		Sender:   w.address,
		Payload:  payload,
		Sequence: w.sequence.Add(1),
	}, nil
}
