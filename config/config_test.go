package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, ":8080", cfg.RPCAddress)
	require.Equal(t, "gamechain-local", cfg.NetworkName)
	require.Equal(t, uint32(5), cfg.RandomAttempts)
	require.Equal(t, uint32(8), cfg.MaxBundle)

	// Second load reads the file it just wrote.
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("RPCAddress = \":9999\"\nGameDeposit = \"250\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.RPCAddress)
	require.Equal(t, "250", cfg.GameDeposit)
	require.Equal(t, uint32(10), cfg.MaxMintPerCall)

	deposit, err := cfg.ParseDeposit(cfg.GameDeposit)
	require.NoError(t, err)
	require.Equal(t, int64(250), deposit.Int64())
}

func TestLoadRejectsInvalidDeposit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("GameDeposit = \"ten\"\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("TradeDeposit = \"-5\"\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
}
