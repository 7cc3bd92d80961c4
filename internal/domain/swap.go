package domain

// MarketIDMock is the marker market id carried by simulated results.
const MarketIDMock = "mock"

// SwapResult is the terminal output of one swap orchestration.
// IsSimulated is load-bearing: a simulated result must never be presented as
// indistinguishable from a real trade, so the field is always set explicitly.
type SwapResult struct {
	FromDenom       string    `json:"from_denom"`
	ToDenom         string    `json:"to_denom"`
	InputAmount     string    `json:"input_amount"`
	EstimatedOutput string    `json:"estimated_output"`
	ExecutionPrice  string    `json:"execution_price"`
	TxHash          string    `json:"tx_hash"`   // "SIM-" prefixed when simulated
	MarketID        string    `json:"market_id"` // "mock" when simulated
	Side            OrderSide `json:"side"`
	IsSimulated     bool      `json:"is_simulated"`
}
