package infra

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds every application setting. Secrets can be overridden through
// environment variables after the file is loaded.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Exchange struct {
		RestURL    string `yaml:"rest_url"`
		WSURL      string `yaml:"ws_url"`
		ChainID    string `yaml:"chain_id"`
		TimeoutSec int    `yaml:"timeout_sec"`
		RetryCount int    `yaml:"retry_count"`
		SchemaHint string `yaml:"schema_hint"` // "", "v1" or "v2"; "" = auto-detect
	} `yaml:"exchange"`

	Wallet struct {
		Address   string `yaml:"address"`
		SignerURL string `yaml:"signer_url"` // external signing collaborator
		AuthToken string `yaml:"auth_token"`
	} `yaml:"wallet"`

	Trading struct {
		Mode               string          `yaml:"mode"` // "SIM" or "REAL"
		StageTimeoutSec    int             `yaml:"stage_timeout_sec"`
		DefaultSlippagePct decimal.Decimal `yaml:"default_slippage_pct"`
		SimSeed            int64           `yaml:"sim_seed"` // 0 = time-seeded
	} `yaml:"trading"`

	Stream struct {
		Enabled bool     `yaml:"enabled"`
		Markets []string `yaml:"markets"` // market IDs to watch
	} `yaml:"stream"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file, applies environment
// overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Exchange.RestURL == "" || !hasHTTPPrefix(c.Exchange.RestURL) {
		return fmt.Errorf("invalid exchange REST URL: %s", c.Exchange.RestURL)
	}
	if c.Stream.Enabled {
		if c.Exchange.WSURL == "" || (!strings.HasPrefix(c.Exchange.WSURL, "ws://") && !strings.HasPrefix(c.Exchange.WSURL, "wss://")) {
			return fmt.Errorf("invalid exchange WS URL: %s", c.Exchange.WSURL)
		}
	}
	switch c.Trading.Mode {
	case "SIM", "REAL":
	case "":
		c.Trading.Mode = "SIM" // safe default
	default:
		return fmt.Errorf("unknown trading mode: %s", c.Trading.Mode)
	}
	if c.Trading.DefaultSlippagePct.IsNegative() || c.Trading.DefaultSlippagePct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("default slippage must be within [0, 100]: %s", c.Trading.DefaultSlippagePct)
	}
	if c.Trading.Mode == "REAL" && c.Wallet.Address == "" {
		return fmt.Errorf("wallet address is required in REAL mode")
	}
	return nil
}

func hasHTTPPrefix(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// overrideWithEnv replaces settings from environment variables when present.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("DEXGO_WALLET_ADDRESS"); addr != "" {
		cfg.Wallet.Address = addr
	}
	if url := os.Getenv("DEXGO_SIGNER_URL"); url != "" {
		cfg.Wallet.SignerURL = url
	}
	if token := os.Getenv("DEXGO_AUTH_TOKEN"); token != "" {
		cfg.Wallet.AuthToken = token
	}
	if mode := os.Getenv("DEXGO_TRADING_MODE"); mode != "" {
		cfg.Trading.Mode = mode
	}
}
