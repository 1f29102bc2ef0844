// Package config loads and validates the bot configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Mode selects the broker implementation once at startup.
type Mode string

const (
	ModeSim   Mode = "sim"
	ModePaper Mode = "paper"
)

// MaxSymbols bounds the per-invocation watch list.
const MaxSymbols = 16

// Config represents the complete bot configuration.
type Config struct {
	Mode     Mode           `json:"mode" yaml:"mode"`
	Symbols  []string       `json:"symbols" yaml:"symbols"`
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`

	// PollInterval is how often the run loop starts a new cycle, e.g. "30s".
	PollInterval string `json:"poll_interval" yaml:"poll_interval"`

	// BrokerTimeout bounds every broker call within a cycle, e.g. "10s".
	BrokerTimeout string `json:"broker_timeout" yaml:"broker_timeout"`
}

// AccountConfig contains simulation account parameters; ignored in paper
// mode where the venue owns the account.
type AccountConfig struct {
	InitialCash float64 `json:"initial_cash" yaml:"initial_cash"`
}

// StrategyConfig contains the crossover and sizing parameters.
type StrategyConfig struct {
	SMAWindow     int     `json:"sma_window" yaml:"sma_window"`
	EMAWindow     int     `json:"ema_window" yaml:"ema_window"`
	AllocationPct float64 `json:"allocation_pct" yaml:"allocation_pct"`
	OrderType     string  `json:"order_type" yaml:"order_type"` // "market" or "limit"
	Commission    float64 `json:"commission,omitempty" yaml:"commission,omitempty"`
	SlippagePct   float64 `json:"slippage_pct,omitempty" yaml:"slippage_pct,omitempty"`

	// HistoryDays is how much daily history to request from the feed.
	HistoryDays int `json:"history_days" yaml:"history_days"`
}

// JournalConfig selects the persistence sink. "none" keeps trades
// in-session only.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Credentials carry the brokerage API keys. They come from the environment,
// never the config file.
type Credentials struct {
	Key    string
	Secret string
}

// LoadCredentials reads ALPACA_KEY/ALPACA_SECRET, honoring a .env file in
// the working directory when present.
func LoadCredentials() Credentials {
	_ = godotenv.Load()
	return Credentials{
		Key:    os.Getenv("ALPACA_KEY"),
		Secret: os.Getenv("ALPACA_SECRET"),
	}
}

func (c Credentials) Present() bool { return c.Key != "" && c.Secret != "" }

// LoadFromFile loads configuration from a file (YAML or JSON based on
// content; YAML is tried first).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// PollEvery returns the parsed poll interval.
func (c *Config) PollEvery() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// BrokerDeadline returns the parsed per-call broker timeout.
func (c *Config) BrokerDeadline() time.Duration {
	d, _ := time.ParseDuration(c.BrokerTimeout)
	return d
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Mode != ModeSim && c.Mode != ModePaper {
		return fmt.Errorf("mode must be %q or %q", ModeSim, ModePaper)
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	if len(c.Symbols) > MaxSymbols {
		return fmt.Errorf("too many symbols: %d (max %d)", len(c.Symbols), MaxSymbols)
	}
	seen := map[string]bool{}
	for _, s := range c.Symbols {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("empty symbol in list")
		}
		if seen[s] {
			return fmt.Errorf("duplicate symbol: %s", s)
		}
		seen[s] = true
	}
	if c.Mode == ModeSim && c.Account.InitialCash <= 0 {
		return fmt.Errorf("account.initial_cash must be positive in sim mode")
	}
	if c.Strategy.SMAWindow < 2 {
		return fmt.Errorf("strategy.sma_window must be at least 2")
	}
	if c.Strategy.EMAWindow < 2 {
		return fmt.Errorf("strategy.ema_window must be at least 2")
	}
	if c.Strategy.AllocationPct <= 0 || c.Strategy.AllocationPct > 1 {
		return fmt.Errorf("strategy.allocation_pct must be in (0,1]")
	}
	if c.Strategy.OrderType != "market" && c.Strategy.OrderType != "limit" {
		return fmt.Errorf("strategy.order_type must be 'market' or 'limit'")
	}
	if c.Strategy.Commission < 0 || c.Strategy.SlippagePct < 0 {
		return fmt.Errorf("strategy frictions must not be negative")
	}
	need := c.Strategy.SMAWindow
	if c.Strategy.EMAWindow > need {
		need = c.Strategy.EMAWindow
	}
	if c.Strategy.HistoryDays < need {
		return fmt.Errorf("strategy.history_days must cover the largest window (%d)", need)
	}
	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.TradesFile == "" {
			return fmt.Errorf("journal.trades_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	if d, err := time.ParseDuration(c.PollInterval); err != nil || d <= 0 {
		return fmt.Errorf("poll_interval must be a positive duration")
	}
	if d, err := time.ParseDuration(c.BrokerTimeout); err != nil || d <= 0 {
		return fmt.Errorf("broker_timeout must be a positive duration")
	}
	return nil
}

// Default returns a configuration with sensible defaults: a pure simulation
// that never touches a real venue.
func Default() *Config {
	return &Config{
		Mode:    ModeSim,
		Symbols: []string{"AAPL"},
		Account: AccountConfig{
			InitialCash: 100000,
		},
		Strategy: StrategyConfig{
			SMAWindow:     50,
			EMAWindow:     200,
			AllocationPct: 0.10,
			OrderType:     "market",
			Commission:    1.0,
			SlippagePct:   0.0005,
			HistoryDays:   365,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./quantbot.db",
		},
		PollInterval:  "30s",
		BrokerTimeout: "10s",
	}
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
