package domain

import (
	"time"
)

// DenomMeta caches metadata for an asset denomination.
type DenomMeta struct {
	Denom        string    `gorm:"primaryKey" json:"denom"`
	Symbol       string    `json:"symbol"`
	Decimals     int       `json:"decimals"`
	IconPath     string    `json:"icon_path"`
	IsActive     bool      `json:"is_active" gorm:"index"` // still listed by the exchange
	LastSyncedAt time.Time `json:"last_synced_at"`         // last metadata/icon sync time
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DecimalsOrDefault returns the recorded decimals, falling back to
// DefaultDecimals when the upstream asset record omitted them.
func (d *DenomMeta) DecimalsOrDefault() int {
	if d.Decimals <= 0 {
		return DefaultDecimals
	}
	return d.Decimals
}

// SwapRecord is the journaled form of a SwapResult.
type SwapRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FromDenom       string    `json:"from_denom" gorm:"index"`
	ToDenom         string    `json:"to_denom" gorm:"index"`
	InputAmount     string    `json:"input_amount"`
	EstimatedOutput string    `json:"estimated_output"`
	ExecutionPrice  string    `json:"execution_price"`
	TxHash          string    `json:"tx_hash"`
	MarketID        string    `json:"market_id"`
	Side            string    `json:"side"`
	IsSimulated     bool      `json:"is_simulated" gorm:"index"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewSwapRecord flattens a SwapResult for persistence.
func NewSwapRecord(res SwapResult) *SwapRecord {
	return &SwapRecord{
		FromDenom:       res.FromDenom,
		ToDenom:         res.ToDenom,
		InputAmount:     res.InputAmount,
		EstimatedOutput: res.EstimatedOutput,
		ExecutionPrice:  res.ExecutionPrice,
		TxHash:          res.TxHash,
		MarketID:        res.MarketID,
		Side:            string(res.Side),
		IsSimulated:     res.IsSimulated,
	}
}

// AppConfig represents user-specific configuration (Key-Value)
type AppConfig struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
