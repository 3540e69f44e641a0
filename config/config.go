package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	RPCAddress     string `toml:"RPCAddress"`
	MetricsAddress string `toml:"MetricsAddress"`
	DataDir        string `toml:"DataDir"`
	NetworkName    string `toml:"NetworkName"`
	LogPath        string `toml:"LogPath"`
	RPCAuthToken   string `toml:"RPCAuthToken"`

	// Deposits are decimal strings of native currency.
	GameDeposit  string `toml:"GameDeposit"`
	TradeDeposit string `toml:"TradeDeposit"`

	MaxGameCollections uint32 `toml:"MaxGameCollections"`
	MaxItems           uint32 `toml:"MaxItems"`
	MaxMintPerCall     uint32 `toml:"MaxMintPerCall"`
	MaxBundle          uint32 `toml:"MaxBundle"`
	RandomAttempts     uint32 `toml:"RandomAttempts"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8080"
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = ":9090"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./gamechain-data"
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "gamechain-local"
	}
	if strings.TrimSpace(cfg.GameDeposit) == "" {
		cfg.GameDeposit = "0"
	}
	if strings.TrimSpace(cfg.TradeDeposit) == "" {
		cfg.TradeDeposit = "0"
	}
	if cfg.MaxGameCollections == 0 {
		cfg.MaxGameCollections = 16
	}
	if cfg.MaxItems == 0 {
		cfg.MaxItems = 32
	}
	if cfg.MaxMintPerCall == 0 {
		cfg.MaxMintPerCall = 10
	}
	if cfg.MaxBundle == 0 {
		cfg.MaxBundle = 8
	}
	if cfg.RandomAttempts == 0 {
		cfg.RandomAttempts = 5
	}
}

func validate(cfg *Config) error {
	if _, err := cfg.ParseDeposit(cfg.GameDeposit); err != nil {
		return fmt.Errorf("config: GameDeposit: %w", err)
	}
	if _, err := cfg.ParseDeposit(cfg.TradeDeposit); err != nil {
		return fmt.Errorf("config: TradeDeposit: %w", err)
	}
	return nil
}

// ParseDeposit parses a decimal deposit string into a non-negative amount.
func (c *Config) ParseDeposit(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount %q must be non-negative", value)
	}
	return amount, nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(cfg)
}
