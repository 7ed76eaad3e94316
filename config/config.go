package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/papertrader/ledger"
)

// Config represents the complete papertrader configuration
type Config struct {
	Store StoreConfig `json:"store" yaml:"store"`
	Seed  SeedConfig  `json:"seed" yaml:"seed"`
	Log   LogConfig   `json:"log" yaml:"log"`
	Demo  []DemoTrade `json:"demo,omitempty" yaml:"demo,omitempty"`
}

// StoreConfig locates the durable store
type StoreConfig struct {
	Path string `json:"path" yaml:"path"`
}

// SeedConfig describes the default account created when a store opens empty
type SeedConfig struct {
	Username   string `json:"username" yaml:"username"`
	Credential string `json:"credential" yaml:"credential"`
	Balance    string `json:"balance" yaml:"balance"` // decimal string, e.g. "100000.00"
}

// LogConfig controls log output
type LogConfig struct {
	Level string `json:"level" yaml:"level"` // debug, info, warn, error
}

// DemoTrade is one step of a scripted trade sequence for the demo command
type DemoTrade struct {
	Symbol   string `json:"symbol" yaml:"symbol"`
	Side     string `json:"side" yaml:"side"` // BUY or SELL
	Quantity int64  `json:"quantity" yaml:"quantity"`
	Price    string `json:"price" yaml:"price"` // decimal string
}

// SeedAccount converts the seed section into the ledger's seed value.
// Validate must have passed first; a bad balance here is a programming error.
func (s SeedConfig) SeedAccount() (ledger.SeedAccount, error) {
	balance, err := decimal.NewFromString(s.Balance)
	if err != nil {
		return ledger.SeedAccount{}, fmt.Errorf("parse seed balance: %w", err)
	}
	return ledger.SeedAccount{
		Username:   s.Username,
		Credential: s.Credential,
		Balance:    balance,
	}, nil
}

// LoadFromFile loads configuration from a file (YAML or JSON based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Seed.Username == "" {
		return fmt.Errorf("seed.username is required")
	}
	balance, err := decimal.NewFromString(c.Seed.Balance)
	if err != nil {
		return fmt.Errorf("seed.balance must be a decimal amount")
	}
	if balance.Sign() < 0 {
		return fmt.Errorf("seed.balance must not be negative")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	for i, d := range c.Demo {
		if d.Symbol == "" {
			return fmt.Errorf("demo[%d].symbol is required", i)
		}
		if !ledger.Side(d.Side).Valid() {
			return fmt.Errorf("demo[%d].side must be BUY or SELL", i)
		}
		if d.Quantity <= 0 {
			return fmt.Errorf("demo[%d].quantity must be positive", i)
		}
		price, err := decimal.NewFromString(d.Price)
		if err != nil || price.Sign() <= 0 {
			return fmt.Errorf("demo[%d].price must be a positive decimal amount", i)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "./papertrader.db",
		},
		Seed: SeedConfig{
			Username:   "demo",
			Credential: "demo",
			Balance:    "100000.00",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
